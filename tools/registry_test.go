package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/tools"
)

func testTool(name string) protocol.Tool {
	return protocol.Tool{
		Name:        name,
		Description: "test tool: " + name,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{"type": "string"},
			},
		},
	}
}

func echoHandler(_ context.Context, args json.RawMessage) (tools.Result, error) {
	return tools.Result{Content: string(args)}, nil
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		tool    protocol.Tool
		wantErr error
	}{
		{
			name: "valid tool",
			tool: testTool("register_valid"),
		},
		{
			name:    "empty name",
			tool:    protocol.Tool{Name: ""},
			wantErr: tools.ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tools.NewRegistry()
			err := r.Register(tt.tool, echoHandler)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Register() unexpected error: %v", err)
			}
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := tools.NewRegistry()
	tool := testTool("register_duplicate")

	if err := r.Register(tool, echoHandler); err != nil {
		t.Fatalf("first Register() failed: %v", err)
	}

	err := r.Register(tool, echoHandler)
	if !errors.Is(err, tools.ErrAlreadyExists) {
		t.Errorf("second Register() error = %v, want %v", err, tools.ErrAlreadyExists)
	}
}

func TestRegistries_AreIndependent(t *testing.T) {
	r1 := tools.NewRegistry()
	r2 := tools.NewRegistry()

	if err := r1.Register(testTool("shared_name"), echoHandler); err != nil {
		t.Fatalf("Register() on r1 failed: %v", err)
	}
	if err := r2.Register(testTool("shared_name"), echoHandler); err != nil {
		t.Errorf("Register() on r2 failed: %v", err)
	}
}

func TestReplace(t *testing.T) {
	r := tools.NewRegistry()
	tool := testTool("replace_existing")

	if err := r.Register(tool, echoHandler); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	replacementHandler := func(_ context.Context, _ json.RawMessage) (tools.Result, error) {
		return tools.Result{Content: "replaced"}, nil
	}

	if err := r.Replace(tool, replacementHandler); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}

	result, err := r.Execute(context.Background(), "replace_existing", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Execute() after Replace() failed: %v", err)
	}
	if result.Content != "replaced" {
		t.Errorf("Execute() content = %q, want %q", result.Content, "replaced")
	}
}

func TestReplace_NotFound(t *testing.T) {
	r := tools.NewRegistry()

	err := r.Replace(testTool("replace_nonexistent"), echoHandler)
	if !errors.Is(err, tools.ErrNotFound) {
		t.Errorf("Replace() error = %v, want %v", err, tools.ErrNotFound)
	}
}

func TestReplace_EmptyName(t *testing.T) {
	r := tools.NewRegistry()

	err := r.Replace(protocol.Tool{Name: ""}, echoHandler)
	if !errors.Is(err, tools.ErrEmptyName) {
		t.Errorf("Replace() error = %v, want %v", err, tools.ErrEmptyName)
	}
}

func TestGet(t *testing.T) {
	r := tools.NewRegistry()

	if err := r.Register(testTool("get_existing"), echoHandler); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	handler, exists := r.Get("get_existing")
	if !exists {
		t.Fatal("Get() returned exists=false, want true")
	}
	if handler == nil {
		t.Fatal("Get() returned nil handler")
	}
	if !r.Has("get_existing") {
		t.Error("Has() = false, want true")
	}
}

func TestGet_NotFound(t *testing.T) {
	r := tools.NewRegistry()

	if _, exists := r.Get("get_nonexistent"); exists {
		t.Error("Get() returned exists=true for nonexistent tool")
	}
	if r.Has("get_nonexistent") {
		t.Error("Has() = true for nonexistent tool")
	}
}

func TestList_SortedByName(t *testing.T) {
	r := tools.NewRegistry()

	for _, name := range []string{"list_c", "list_a", "list_b"} {
		if err := r.Register(testTool(name), echoHandler); err != nil {
			t.Fatalf("Register(%q) failed: %v", name, err)
		}
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("List() returned %d tools, want 3", len(list))
	}

	want := []string{"list_a", "list_b", "list_c"}
	for i, tool := range list {
		if tool.Name != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, tool.Name, want[i])
		}
	}
}

func TestExecute(t *testing.T) {
	r := tools.NewRegistry()
	handler := func(_ context.Context, args json.RawMessage) (tools.Result, error) {
		var params struct {
			Input string `json:"input"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return tools.Result{}, err
		}
		return tools.Result{Content: "echo: " + params.Input}, nil
	}

	if err := r.Register(testTool("execute_valid"), handler); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	result, err := r.Execute(
		context.Background(),
		"execute_valid",
		json.RawMessage(`{"input":"hello"}`),
	)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if result.Content != "echo: hello" {
		t.Errorf("Execute() content = %q, want %q", result.Content, "echo: hello")
	}
	if result.IsError {
		t.Error("Execute() IsError = true, want false")
	}
}

func TestExecute_NotFound(t *testing.T) {
	r := tools.NewRegistry()

	_, err := r.Execute(context.Background(), "execute_nonexistent", nil)
	if !errors.Is(err, tools.ErrNotFound) {
		t.Errorf("Execute() error = %v, want %v", err, tools.ErrNotFound)
	}
}

func TestExecute_HandlerError(t *testing.T) {
	r := tools.NewRegistry()
	handlerErr := errors.New("handler failed")
	handler := func(_ context.Context, _ json.RawMessage) (tools.Result, error) {
		return tools.Result{}, handlerErr
	}

	if err := r.Register(testTool("execute_error"), handler); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, err := r.Execute(context.Background(), "execute_error", nil)
	if err == nil {
		t.Fatal("Execute() expected error, got nil")
	}
	if !errors.Is(err, handlerErr) {
		t.Errorf("Execute() error chain does not contain handler error: %v", err)
	}
}

func TestExecute_RespectsContext(t *testing.T) {
	r := tools.NewRegistry()
	handler := func(ctx context.Context, _ json.RawMessage) (tools.Result, error) {
		if err := ctx.Err(); err != nil {
			return tools.Result{}, err
		}
		return tools.Result{Content: "ok"}, nil
	}

	if err := r.Register(testTool("execute_ctx"), handler); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Execute(ctx, "execute_ctx", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}
