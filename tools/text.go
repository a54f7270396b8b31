package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// ReadLogTool is the name under which the text reader is registered for
// personas that observe the incident log.
const ReadLogTool = "read_log"

// TextReader reads a named text resource. Every call fetches current content;
// implementations must not cache across calls because callers rely on
// observing changes between turns.
type TextReader interface {
	ReadText(ctx context.Context, path string) (string, error)
}

// TextReaderFunc adapts a function to the TextReader interface.
type TextReaderFunc func(ctx context.Context, path string) (string, error)

func (f TextReaderFunc) ReadText(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// FileReader reads text resources from the local filesystem.
type FileReader struct{}

// ReadText returns the file content at path. Missing or unreadable files
// yield ErrResourceNotFound.
func (FileReader) ReadText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrResourceNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("%w: %s", ErrResourceNotFound, path)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return "", fmt.Errorf("%w: %s: %v", ErrResourceNotFound, path, pathErr.Err)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// PathArgs is the argument payload of path-based tools.
type PathArgs struct {
	Path string `json:"path"`
}

// ReadText returns the tool definition and handler exposing reader under
// name. When defaultPath is set, calls without a path read it.
func ReadText(name, defaultPath string, reader TextReader) (protocol.Tool, Handler) {
	tool := protocol.Tool{
		Name:        name,
		Description: "Reads the current content of a text resource such as a log file.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path of the resource to read.",
				},
			},
		},
	}

	handler := func(ctx context.Context, raw json.RawMessage) (Result, error) {
		var args PathArgs
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return Result{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
			}
		}
		if args.Path == "" {
			args.Path = defaultPath
		}

		content, err := reader.ReadText(ctx, args.Path)
		if err != nil {
			return Result{}, err
		}
		return Result{Content: content}, nil
	}

	return tool, handler
}
