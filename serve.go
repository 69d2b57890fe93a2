package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/willmeyers/jmap-mcp-server/config"
	"github.com/willmeyers/jmap-mcp-server/jmap"
	"github.com/willmeyers/jmap-mcp-server/logging"
	"github.com/willmeyers/jmap-mcp-server/tools"
)

const (
	serverName   = "JMAP Mail Server"
	connectLimit = 30 * time.Second
	shutdownWait = 5 * time.Second

	instructions = `Tools for a JMAP mailbox (Fastmail by default).
Start with list_mailboxes to learn mailbox names and roles, then search_email to find messages and read_email with an id from the results.
Use list_identities to see which addresses send_draft may use as the sender.`
)

// connect loads configuration, sets up logging and opens the JMAP session.
// The returned closer flushes the log file.
func connect(ctx context.Context, stderr io.Writer) (*config.Config, *jmap.Client, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	logger, closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile, stderr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logging setup: %w", err)
	}
	slog.SetDefault(logger)

	cctx, cancel := context.WithTimeout(ctx, connectLimit)
	defer cancel()

	client, err := jmap.Connect(cctx, cfg.SessionURL, cfg.AuthToken)
	if err != nil {
		closer.Close()
		return nil, nil, nil, err
	}
	return cfg, client, closer, nil
}

// newMCPServer builds the server with middleware and registers the tools.
// Middleware applies in reverse: logging wraps timeout wraps handler.
func newMCPServer(client tools.EmailService, logger *slog.Logger, opts serveOptions) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
		server.WithToolHandlerMiddleware(timeoutMiddleware(opts.toolTimeout)),
		server.WithToolHandlerMiddleware(loggingMiddleware(logger)),
	)
	tools.Register(s, client, tools.Options{ReadOnly: opts.readOnly})
	return s
}

func runServe(ctx context.Context, opts serveOptions, stderr io.Writer) error {
	cfg, client, closer, err := connect(ctx, stderr)
	if err != nil {
		slog.Error("startup failed", "error", err)
		return err
	}
	defer closer.Close()

	// Fail fast on bad credentials or an unreachable server
	if _, err := client.GetMailboxes(ctx); err != nil {
		slog.Error("failed to list mailboxes (check token and JMAP URL)", "error", err)
		os.Exit(1)
	}

	s := newMCPServer(client, slog.Default(), opts)

	slog.Info("server starting",
		"version", version,
		"transport", opts.transport,
		"read_only", opts.readOnly,
		"account_id", client.AccountID(),
		"session_url", cfg.SessionURL,
		"api_url", cfg.BaseURL,
	)

	switch opts.transport {
	case transportHTTP:
		err = serveHTTP(ctx, s, cfg.Addr())
	default:
		err = server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
		return err
	}

	slog.Info("server stopped")
	return nil
}

func serveHTTP(ctx context.Context, s *server.MCPServer, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr, "endpoint", "/mcp")
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		return httpServer.Shutdown(sctx)
	}
}

func runCheck(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, client, closer, err := connect(ctx, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	mailboxes, err := client.GetMailboxes(ctx)
	if err != nil {
		return err
	}
	identities, err := client.GetIdentities(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Session:    %s\n", cfg.SessionURL)
	fmt.Fprintf(stdout, "Account:    %s\n", client.AccountID())
	fmt.Fprintf(stdout, "Mailboxes:  %d\n", len(mailboxes))
	fmt.Fprintf(stdout, "Identities: %d\n", len(identities))
	return nil
}
