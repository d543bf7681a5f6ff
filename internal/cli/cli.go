// Package cli parses the vertex command line. It does not read os.Args and
// does not start anything.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	CommandScan  = "scan"
	CommandServe = "serve"
)

// Output formats for the scan command.
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

// Fetcher backends selectable with -client.
const (
	ClientNetHTTP  = "nethttp"
	ClientChromedp = "chromedp"
)

var ErrUsage = errors.New("usage: vertex scan (-target URL | -file PATH) [-mode static|rendered] [-format json|md|html] [-client nethttp|chromedp]\n       vertex serve [-addr :8080] [-client nethttp|chromedp] [-redis URL] [-storage DSN] [-headless=true]")

// CLIArgs are the command-line arguments for one invocation.
type CLIArgs struct {
	Command string

	// scan
	Target string
	File   string
	Mode   string
	Format string

	// serve
	Addr     string
	RedisURL string
	Storage  string
	Headless bool

	// Client names the webclient backend used for static fetches.
	Client   string
	LogLevel string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	if len(args) == 0 {
		return nil, ErrUsage
	}
	out := &CLIArgs{Command: args[0], RawArgs: args}

	fs := flag.NewFlagSet("vertex "+args[0], flag.ContinueOnError)
	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)
	fs.StringVar(&out.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.StringVar(&out.Client, "client", ClientNetHTTP, "Fetcher for static scans: nethttp|chromedp")

	switch args[0] {
	case CommandScan:
		fs.StringVar(&out.Target, "target", "", "URL to scan")
		fs.StringVar(&out.File, "file", "", "HTML file to scan")
		fs.StringVar(&out.Mode, "mode", "static", "Scan mode: static|rendered")
		fs.StringVar(&out.Format, "format", FormatJSON, "Output format: json|md|html")
		fs.BoolVar(&out.Headless, "headless", true, "Run Chrome headless in rendered mode")
	case CommandServe:
		fs.StringVar(&out.Addr, "addr", ":8080", "HTTP listen address")
		fs.StringVar(&out.RedisURL, "redis", "", "Redis URL for the report store (default: sqlite)")
		fs.StringVar(&out.Storage, "storage", "", "SQLite DSN or file path for reports (default: in-memory)")
		fs.BoolVar(&out.Headless, "headless", true, "Run Chrome headless for rendered scans")
	default:
		return nil, fmt.Errorf("unknown command %q\n%w", args[0], ErrUsage)
	}

	if err := fs.Parse(args[1:]); err != nil {
		// Flag parsing errors are useful to return to caller
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments %v", fs.Args())
	}
	switch out.Client {
	case ClientNetHTTP, ClientChromedp:
	default:
		return nil, fmt.Errorf("invalid -client %q", out.Client)
	}

	if out.Command == CommandScan {
		target, file := strings.TrimSpace(out.Target), strings.TrimSpace(out.File)
		switch {
		case target == "" && file == "":
			return nil, fmt.Errorf("missing required -target or -file argument")
		case target != "" && file != "":
			return nil, fmt.Errorf("-target and -file are mutually exclusive")
		}
		switch out.Mode {
		case "static", "rendered":
		default:
			return nil, fmt.Errorf("invalid -mode %q", out.Mode)
		}
		if file != "" && out.Mode == "rendered" {
			return nil, fmt.Errorf("-file can only be scanned in static mode")
		}
		switch out.Format {
		case FormatJSON, FormatMarkdown, FormatHTML:
		default:
			return nil, fmt.Errorf("invalid -format %q", out.Format)
		}
	}
	return out, nil
}
