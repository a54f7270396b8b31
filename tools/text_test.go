package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/groupchat/tools"
)

func TestFileReader_ReadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte("ERROR auth-api down\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	content, err := tools.FileReader{}.ReadText(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadText() failed: %v", err)
	}
	if content != "ERROR auth-api down\n" {
		t.Errorf("ReadText() = %q, want %q", content, "ERROR auth-api down\n")
	}
}

func TestFileReader_ReadText_ObservesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	reader := tools.FileReader{}
	if _, err := reader.ReadText(context.Background(), path); err != nil {
		t.Fatalf("first ReadText() failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	content, err := reader.ReadText(context.Background(), path)
	if err != nil {
		t.Fatalf("second ReadText() failed: %v", err)
	}
	if content != "second" {
		t.Errorf("ReadText() = %q, want fresh content %q", content, "second")
	}
}

func TestFileReader_ReadText_NotFound(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "missing.log")},
		{name: "empty path", path: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tools.FileReader{}.ReadText(context.Background(), tt.path)
			if !errors.Is(err, tools.ErrResourceNotFound) {
				t.Errorf("ReadText(%q) error = %v, want %v", tt.path, err, tools.ErrResourceNotFound)
			}
		})
	}
}

func TestFileReader_ReadText_Directory(t *testing.T) {
	_, err := tools.FileReader{}.ReadText(context.Background(), t.TempDir())
	if !errors.Is(err, tools.ErrResourceNotFound) {
		t.Errorf("ReadText(dir) error = %v, want %v", err, tools.ErrResourceNotFound)
	}
}

func TestReadText_DefaultPath(t *testing.T) {
	var gotPath string
	reader := tools.TextReaderFunc(func(_ context.Context, path string) (string, error) {
		gotPath = path
		return "content", nil
	})

	r := tools.NewRegistry()
	tool, handler := tools.ReadText(tools.ReadLogTool, "default.log", reader)
	if err := r.Register(tool, handler); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	result, err := r.Execute(context.Background(), tools.ReadLogTool, nil)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if gotPath != "default.log" {
		t.Errorf("reader got path %q, want %q", gotPath, "default.log")
	}
	if result.Content != "content" {
		t.Errorf("Execute() content = %q, want %q", result.Content, "content")
	}

	if _, err := r.Execute(context.Background(), tools.ReadLogTool, json.RawMessage(`{"path":"other.log"}`)); err != nil {
		t.Fatalf("Execute() with explicit path failed: %v", err)
	}
	if gotPath != "other.log" {
		t.Errorf("reader got path %q, want %q", gotPath, "other.log")
	}
}

func TestReadText_PropagatesNotFound(t *testing.T) {
	reader := tools.TextReaderFunc(func(_ context.Context, path string) (string, error) {
		return "", tools.ErrResourceNotFound
	})

	r := tools.NewRegistry()
	tool, handler := tools.ReadText(tools.ReadLogTool, "app.log", reader)
	if err := r.Register(tool, handler); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, err := r.Execute(context.Background(), tools.ReadLogTool, nil)
	if !errors.Is(err, tools.ErrResourceNotFound) {
		t.Errorf("Execute() error = %v, want %v", err, tools.ErrResourceNotFound)
	}
}

func TestReadText_InvalidArguments(t *testing.T) {
	r := tools.NewRegistry()
	tool, handler := tools.ReadText(tools.ReadLogTool, "", tools.FileReader{})
	if err := r.Register(tool, handler); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, err := r.Execute(context.Background(), tools.ReadLogTool, json.RawMessage(`{invalid`))
	if !errors.Is(err, tools.ErrInvalidArguments) {
		t.Errorf("Execute() error = %v, want %v", err, tools.ErrInvalidArguments)
	}
}
