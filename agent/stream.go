package agent

import "context"

// TurnStream runs one turn in the background and exposes its updates as a
// channel. It has a single consumer: Updates must be drained (or ctx
// cancelled) for the turn to finish.
type TurnStream struct {
	updates chan Update
	done    chan struct{}
	answer  string
	err     error
}

// Stream starts a turn and returns immediately.
func (c *Controller) Stream(ctx context.Context, threadID, text string) *TurnStream {
	s := &TurnStream{
		updates: make(chan Update, 16),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.updates)
		s.answer, s.err = c.RunTurn(ctx, threadID, text, func(u Update) {
			select {
			case s.updates <- u:
			case <-ctx.Done():
			}
		})
	}()

	return s
}

// Updates yields the turn's updates in order and is closed when it ends.
func (s *TurnStream) Updates() <-chan Update {
	return s.updates
}

// Result blocks until the turn ends and returns its answer.
func (s *TurnStream) Result() (string, error) {
	<-s.done
	return s.answer, s.err
}
