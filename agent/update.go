package agent

// State is the controller's position within a turn.
type State int

const (
	// StateAwaitingModel means the sequence was sent and a reply is pending.
	StateAwaitingModel State = iota
	// StateDispatchingTools means the model requested tools that are running.
	StateDispatchingTools
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "awaiting_model"
	case StateDispatchingTools:
		return "dispatching_tools"
	default:
		return "unknown"
	}
}

// UpdateKind tags an Update.
type UpdateKind int

const (
	// UpdateState reports a state transition; State is set.
	UpdateState UpdateKind = iota
	// UpdateToken carries a streamed chunk of assistant text.
	UpdateToken
	// UpdateToolCall announces a tool about to run; Text holds its raw arguments.
	UpdateToolCall
	// UpdateProgress carries a free-form progress line from a running tool.
	UpdateProgress
	// UpdateToolResult carries a tool's output.
	UpdateToolResult
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateState:
		return "state"
	case UpdateToken:
		return "token"
	case UpdateToolCall:
		return "tool_call"
	case UpdateProgress:
		return "progress"
	case UpdateToolResult:
		return "tool_result"
	default:
		return "unknown"
	}
}

// Update is one incremental notification produced during a turn.
type Update struct {
	Kind  UpdateKind
	State State
	Tool  string
	Text  string
}

// Observer receives updates in order on the goroutine running the turn.
type Observer func(Update)
