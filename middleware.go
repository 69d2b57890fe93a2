package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// timeoutMiddleware bounds each tool call with a deadline. A handler that
// gives up because the deadline passed is reported as a tool error rather
// than a protocol error.
func timeoutMiddleware(timeout time.Duration) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			result, err := next(ctx, req)
			if err != nil && errors.Is(err, context.DeadlineExceeded) {
				return mcp.NewToolResultError(fmt.Sprintf("Tool %s timed out after %s", req.Params.Name, timeout)), nil
			}
			return result, err
		}
	}
}

// loggingMiddleware logs each tool call with a unique request ID, tool name, duration, and outcome.
func loggingMiddleware(logger *slog.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			l := logger.With("request_id", uuid.New().String(), "tool", req.Params.Name)

			l.Debug("tool call started", "args", len(req.GetArguments()))
			start := time.Now()

			result, err := next(ctx, req)
			duration := time.Since(start)

			switch {
			case err != nil:
				l.Error("tool call failed", "duration_ms", duration.Milliseconds(), "error", err)
			case result != nil && result.IsError:
				l.Warn("tool call returned error", "duration_ms", duration.Milliseconds(), "message", firstText(result))
			default:
				l.Info("tool call completed", "duration_ms", duration.Milliseconds())
			}

			return result, err
		}
	}
}

func firstText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
