package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"compsbot/config"
	"compsbot/model"
)

func checkpointers(t *testing.T) map[string]Checkpointer {
	t.Helper()

	sqliteMem, err := NewSQLiteCheckpointer("")
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqliteFile, err := NewSQLiteCheckpointer(filepath.Join(t.TempDir(), "threads.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite file: %v", err)
	}

	cps := map[string]Checkpointer{
		"memory":      NewMemoryCheckpointer(),
		"sqlite":      sqliteMem,
		"sqlite-file": sqliteFile,
	}
	t.Cleanup(func() {
		for _, cp := range cps {
			cp.Close()
		}
	})
	return cps
}

func TestCheckpointerRoundTrip(t *testing.T) {
	ctx := context.Background()
	call := model.ToolCall{ID: "call_1", Name: "get_comps", Arguments: `{"input":"123 Main St"}`}

	for name, cp := range checkpointers(t) {
		t.Run(name, func(t *testing.T) {
			thread := NewThreadID()

			empty, err := cp.Load(ctx, thread)
			if err != nil {
				t.Fatalf("Load of new thread failed: %v", err)
			}
			if len(empty) != 0 {
				t.Fatalf("new thread should be empty, got %d messages", len(empty))
			}

			if err := cp.Append(ctx, thread,
				model.SystemMessage("system"),
				model.HumanMessage("comps please"),
			); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
			if err := cp.Append(ctx, thread,
				model.AIMessage("", []model.ToolCall{call}),
				model.ToolMessage(call, "<h1>Summary</h1>"),
			); err != nil {
				t.Fatalf("second Append failed: %v", err)
			}
			if err := cp.Append(ctx, thread); err != nil {
				t.Fatalf("empty Append failed: %v", err)
			}

			got, err := cp.Load(ctx, thread)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(got) != 4 {
				t.Fatalf("expected 4 messages, got %d", len(got))
			}
			roles := []model.Role{model.RoleSystem, model.RoleUser, model.RoleAssistant, model.RoleTool}
			for i, role := range roles {
				if got[i].Role != role {
					t.Errorf("message %d role = %q, want %q", i, got[i].Role, role)
				}
			}
			if len(got[2].ToolCalls) != 1 || got[2].ToolCalls[0] != call {
				t.Errorf("tool calls not preserved: %+v", got[2].ToolCalls)
			}
			if got[3].ToolCallID != "call_1" || got[3].ToolName != "get_comps" || got[3].Content != "<h1>Summary</h1>" {
				t.Errorf("tool message not preserved: %+v", got[3])
			}
			if got[0].Timestamp.IsZero() {
				t.Error("timestamp should be preserved")
			}
			if err := model.ValidateSequence(got); err != nil {
				t.Errorf("stored sequence is invalid: %v", err)
			}
		})
	}
}

func TestCheckpointerIsolatesThreads(t *testing.T) {
	ctx := context.Background()
	for name, cp := range checkpointers(t) {
		t.Run(name, func(t *testing.T) {
			a, b := NewThreadID(), NewThreadID()
			cp.Append(ctx, a, model.SystemMessage("a"))
			cp.Append(ctx, b, model.SystemMessage("b"), model.HumanMessage("hi"))

			gotA, _ := cp.Load(ctx, a)
			gotB, _ := cp.Load(ctx, b)
			if len(gotA) != 1 || gotA[0].Content != "a" {
				t.Errorf("thread a = %+v", gotA)
			}
			if len(gotB) != 2 {
				t.Errorf("thread b has %d messages, want 2", len(gotB))
			}
		})
	}
}

func TestCheckpointerRejectsBlankThread(t *testing.T) {
	ctx := context.Background()
	for name, cp := range checkpointers(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := cp.Load(ctx, " "); !errors.Is(err, ErrInvalidThreadID) {
				t.Errorf("Load: expected ErrInvalidThreadID, got %v", err)
			}
			if err := cp.Append(ctx, "", model.HumanMessage("x")); !errors.Is(err, ErrInvalidThreadID) {
				t.Errorf("Append: expected ErrInvalidThreadID, got %v", err)
			}
		})
	}
}

func TestMemoryLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	cp := NewMemoryCheckpointer()
	cp.Append(ctx, "t", model.HumanMessage("original"))

	got, _ := cp.Load(ctx, "t")
	got[0].Content = "changed"

	again, _ := cp.Load(ctx, "t")
	if again[0].Content != "original" {
		t.Error("mutating a loaded slice must not change stored history")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SessionConfig
		want    string
		wantErr bool
	}{
		{"default", config.SessionConfig{}, "*storage.MemoryCheckpointer", false},
		{"memory", config.SessionConfig{Backend: "memory"}, "*storage.MemoryCheckpointer", false},
		{"sqlite", config.SessionConfig{Backend: "SQLite", SQLiteDSN: ":memory:"}, "*storage.SQLiteCheckpointer", false},
		{"unknown", config.SessionConfig{Backend: "redis"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer cp.Close()
			if got := typeName(cp); got != tt.want {
				t.Errorf("New() = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(cp Checkpointer) string {
	switch cp.(type) {
	case *MemoryCheckpointer:
		return "*storage.MemoryCheckpointer"
	case *SQLiteCheckpointer:
		return "*storage.SQLiteCheckpointer"
	default:
		return "unknown"
	}
}

func TestNewThreadIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewThreadID()
		if seen[id] {
			t.Fatalf("duplicate thread id %s", id)
		}
		seen[id] = true
	}
}
