package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/actionlog"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/automation"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/bridge"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/config"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/runtimepath"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "call":
		os.Exit(runCall(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "foreground":
		os.Exit(runForeground(os.Args[2:]))
	case "keys":
		os.Exit(runKeys(os.Args[2:]))
	case "type":
		os.Exit(runType(os.Args[2:]))
	case "clipboard":
		os.Exit(runClipboard(os.Args[2:]))
	case "paste":
		os.Exit(runPaste(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskbridge <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve               Run the bridge daemon (foreground)")
	fmt.Fprintln(w, "  call                Send one request to a running daemon")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  windows             List visible windows")
	fmt.Fprintln(w, "  foreground          Show the foreground window")
	fmt.Fprintln(w, "  keys                Send Enter or Ctrl+V to a window")
	fmt.Fprintln(w, "  type                Type text into a window")
	fmt.Fprintln(w, "  clipboard set       Replace the clipboard text")
	fmt.Fprintln(w, "  paste               Paste the clipboard into a window")
	fmt.Fprintln(w, "  pick                Choose a window interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config print        Print the effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskbridge <command> --help' for command-specific options.")
}

// parseFlags runs fs.Parse and maps the outcome to an exit code. ok is false
// when the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func resolveSocket(flagValue string, cfg *config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg != nil && cfg.Bridge.Socket != "" {
		return cfg.Bridge.Socket, nil
	}
	return runtimepath.SocketPath()
}

func openLogger(cfg *config.Config) *actionlog.Logger {
	logger, err := actionlog.NewLogger(actionlog.FromSettings(cfg.GetLoggingConfig()))
	if err != nil {
		log.Printf("Warning: failed to initialize action logger: %v", err)
		return nil
	}
	return logger
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socketFlag := fs.String("socket", "", "Unix socket path (default: bridge.socket or $XDG_RUNTIME_DIR/deskbridge.sock)")
	wsFlag := fs.String("ws", "", "Also serve websocket clients on this host:port (default: bridge.websocket_addr)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbridge serve [--socket PATH] [--ws ADDR]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the bridge daemon until interrupted.")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "serve takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	socketPath, err := resolveSocket(*socketFlag, cfg)
	if err != nil {
		log.Printf("Failed to resolve socket path: %v", err)
		return 1
	}

	backend, err := platform.Open()
	if err != nil {
		log.Printf("Failed to open window system: %v", err)
		return 1
	}
	defer backend.Close()

	logger := openLogger(cfg)
	defer logger.Close()

	dispatcher := bridge.NewDispatcher(automation.New(backend), logger, cfg.StringDelay())

	srv := bridge.NewServer(socketPath, dispatcher, cfg.Timeout())
	if err := srv.Start(); err != nil {
		log.Printf("Failed to start bridge: %v", err)
		return 1
	}
	defer srv.Stop()

	wsAddr := *wsFlag
	if wsAddr == "" {
		wsAddr = cfg.Bridge.WebsocketAddr
	}
	var ws *bridge.WebsocketServer
	if wsAddr != "" {
		ws = bridge.NewWebsocketServer(dispatcher)
		if err := ws.Start(wsAddr); err != nil {
			log.Printf("Failed to start websocket listener: %v", err)
			return 1
		}
		log.Printf("Websocket listening on %s", ws.Addr())
	}

	log.Println("deskbridge daemon started successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Shutting down...")
	if ws != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ws.Stop(shutdownCtx); err != nil {
			log.Printf("Websocket shutdown: %v", err)
		}
	}
	return 0
}

// callArgs turns command-line words into positional JSON arguments. Words
// that are not valid JSON are sent as strings.
func callArgs(words []string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(words))
	for _, w := range words {
		if json.Valid([]byte(w)) {
			out = append(out, json.RawMessage(w))
			continue
		}
		raw, _ := json.Marshal(w)
		out = append(out, raw)
	}
	return out
}

func runCall(args []string) int {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socketFlag := fs.String("socket", "", "Unix socket path of the running daemon")
	timeout := fs.Duration("timeout", 0, "Request timeout (default: bridge.timeout_ms)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbridge call [--socket PATH] <command> [arg...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Arguments are JSON literals; anything else is sent as a string.")
		fmt.Fprintln(os.Stderr, "Example: deskbridge call sendString 657422 'hello world' 25")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintf(os.Stderr, "Commands: %s\n", strings.Join(sortedCommands(), ", "))
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "call requires a command")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	socketPath, err := resolveSocket(*socketFlag, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	d := *timeout
	if d <= 0 {
		d = cfg.Timeout()
	}

	req := &bridge.Request{Command: fs.Arg(0), Args: callArgs(fs.Args()[1:])}
	resp, err := bridge.NewClient(socketPath, d).Send(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if resp.Status != bridge.StatusOK {
		fmt.Fprintf(os.Stderr, "%s error: %s\n", resp.ErrorKind, resp.Error)
		if resp.ErrorKind == bridge.KindArgument {
			return 2
		}
		return 1
	}
	fmt.Println(string(resp.Data))
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  deskbridge config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  deskbridge config path")
		fmt.Fprintln(os.Stderr, "  deskbridge config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: <user config dir>/deskbridge/config.yaml)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		if _, err := loadConfigResult(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "path":
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(path)
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: <user config dir>/deskbridge/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfigResult(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return res, nil
}
