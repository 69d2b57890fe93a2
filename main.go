package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

// version is set at build time via ldflags
var version = "dev"

const (
	transportStdio = "stdio"
	transportHTTP  = "http"

	defaultToolTimeout = 60 * time.Second
)

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	transport   string
	readOnly    bool
	toolTimeout time.Duration
}

func (o serveOptions) validate() error {
	if o.transport != transportStdio && o.transport != transportHTTP {
		return fmt.Errorf("unknown transport %q (want %s or %s)", o.transport, transportStdio, transportHTTP)
	}
	if o.toolTimeout <= 0 {
		return fmt.Errorf("tool-timeout must be positive, got %s", o.toolTimeout)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, _ := newRootCommand(os.Stdout, os.Stderr)
	if err := root.ParseAndRun(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. The returned options are filled
// in when the serve flags are parsed.
func newRootCommand(stdout, stderr io.Writer) (*ffcli.Command, *serveOptions) {
	opts := &serveOptions{}

	serveFlagSet := flag.NewFlagSet("jmap-mcp serve", flag.ContinueOnError)
	serveFlagSet.SetOutput(stderr)
	serveFlagSet.StringVar(&opts.transport, "transport", transportStdio, "MCP transport: stdio or http")
	serveFlagSet.BoolVar(&opts.readOnly, "read-only", false, "only expose tools that do not modify mail")
	serveFlagSet.DurationVar(&opts.toolTimeout, "tool-timeout", defaultToolTimeout, "deadline for a single tool call")

	serveCmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "jmap-mcp serve [flags]",
		ShortHelp:  "Run the MCP server (default)",
		LongHelp: `Connect to the JMAP account and serve mail tools over MCP.

Credentials and endpoints come from the environment (or a .env file):
  FASTMAIL_AUTH_TOKEN / JMAP_API_TOKEN   bearer token (required)
  FASTMAIL_JMAP_BASE_URL / JMAP_HOST     JMAP host or API URL
  JMAP_SESSION_URL                       session resource override
  MCP_HOST, MCP_PORT                     listen address for -transport http
  LOG_LEVEL, LOG_FILE                    logging

Flags may also be set as JMAP_MCP_TRANSPORT, JMAP_MCP_READ_ONLY and
JMAP_MCP_TOOL_TIMEOUT.

Examples:
  jmap-mcp
  jmap-mcp serve -read-only
  jmap-mcp serve -transport http`,
		FlagSet: serveFlagSet,
		Options: []ff.Option{ff.WithEnvVarPrefix("JMAP_MCP")},
		Exec: func(ctx context.Context, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return runServe(ctx, *opts, stderr)
		},
	}

	checkCmd := &ffcli.Command{
		Name:       "check",
		ShortUsage: "jmap-mcp check",
		ShortHelp:  "Verify credentials and print account details",
		FlagSet:    flag.NewFlagSet("jmap-mcp check", flag.ContinueOnError),
		Exec: func(ctx context.Context, args []string) error {
			return runCheck(ctx, stdout, stderr)
		},
	}

	versionCmd := &ffcli.Command{
		Name:       "version",
		ShortUsage: "jmap-mcp version",
		ShortHelp:  "Print the version",
		FlagSet:    flag.NewFlagSet("jmap-mcp version", flag.ContinueOnError),
		Exec: func(ctx context.Context, args []string) error {
			fmt.Fprintf(stdout, "jmap-mcp %s\n", version)
			return nil
		},
	}

	root := &ffcli.Command{
		ShortUsage:  "jmap-mcp [serve|check|version] [flags]",
		ShortHelp:   "MCP server for JMAP email",
		FlagSet:     flag.NewFlagSet("jmap-mcp", flag.ContinueOnError),
		Subcommands: []*ffcli.Command{serveCmd, checkCmd, versionCmd},
		Exec: func(ctx context.Context, args []string) error {
			// No subcommand: serve with defaults
			if len(args) > 0 {
				return fmt.Errorf("unknown command %q", args[0])
			}
			return serveCmd.ParseAndRun(ctx, nil)
		},
	}

	return root, opts
}
