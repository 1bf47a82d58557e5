package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/pintop/internal/autostart"
	"github.com/1broseidon/pintop/internal/config"
	"github.com/1broseidon/pintop/internal/daemon"
	"github.com/1broseidon/pintop/internal/ipc"
	"github.com/1broseidon/pintop/internal/mcp"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "pin":
		os.Exit(runPin(os.Args[2:]))
	case "unpin":
		os.Exit(runUnpin(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "opacity":
		os.Exit(runOpacity(os.Args[2:]))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "save":
		os.Exit(runSave(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "autostart":
		os.Exit(runAutostart(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
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
	fmt.Fprintln(w, "Usage: pintop <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the pintop daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  pin                 Pin the foreground window (or --id N)")
	fmt.Fprintln(w, "  unpin               Unpin the foreground window (or --id N)")
	fmt.Fprintln(w, "  toggle              Toggle the foreground window's pin (or --id N)")
	fmt.Fprintln(w, "  opacity <percent>   Set a pinned window's opacity (20-100)")
	fmt.Fprintln(w, "  focus --id N        Bring a window to the foreground")
	fmt.Fprintln(w, "  list                List pinned windows")
	fmt.Fprintln(w, "  save                Persist the current pin snapshot now")
	fmt.Fprintln(w, "  watch               Stream daemon events to stdout")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  autostart on        Launch the daemon at login")
	fmt.Fprintln(w, "  autostart off       Remove the login entry")
	fmt.Fprintln(w, "  autostart status    Show whether autostart is enabled")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'pintop <command> --help' for command-specific options.")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintop daemon [--sim] [--config PATH] [--state PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the pin daemon in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	sim := fs.Bool("sim", false, "Use the in-memory window simulator instead of the native backend")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/pintop/config.yaml)")
	statePath := fs.String("state", "", "Snapshot file path (default: ~/.config/pintop/pinned.json)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	if err := daemon.Run(daemon.Options{
		Sim:        *sim,
		ConfigPath: *configPath,
		StatePath:  *statePath,
	}); err != nil {
		log.Fatalf("Daemon failed: %v", err)
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintop status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("backend:        %s\n", status.Backend)
	fmt.Printf("pinned_count:   %d\n", status.PinnedCount)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

var (
	listTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	listProcessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	listDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	listPinStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintop list [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List pinned windows in pin order.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output pins as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.ListPins()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data.Pins); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if len(data.Pins) == 0 {
		fmt.Println(listDimStyle.Render("no pinned windows"))
		return 0
	}
	for _, p := range data.Pins {
		marker := listPinStyle.Render("●")
		id := listDimStyle.Render(fmt.Sprintf("[%d]", p.WindowID))
		opacity := listDimStyle.Render(fmt.Sprintf("%d%%", p.Opacity))
		fmt.Printf("%s %s %s %s %s\n",
			marker, id,
			listTitleStyle.Render(p.Title),
			listProcessStyle.Render(p.ProcessName),
			opacity)
	}
	return 0
}

// windowFlag adds the shared --id flag to a flag set.
func windowFlag(fs *flag.FlagSet) *uint64 {
	return fs.Uint64("id", 0, "Target window id (default: foreground window)")
}

func runPin(args []string) int {
	fs := flag.NewFlagSet("pin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintop pin [--id N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pin a window always-on-top. Without --id the foreground window is pinned.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	id := windowFlag(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	data, err := client.Pin(uintptr(*id))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("pinned [%d] %s (%s) at %d%%\n", data.WindowID, data.Title, data.ProcessName, data.Opacity)
	return 0
}

func runUnpin(args []string) int {
	fs := flag.NewFlagSet("unpin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintop unpin [--id N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Remove a window's pin. Without --id the foreground window is targeted.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	id := windowFlag(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.Unpin(uintptr(*id)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runToggle(args []string) int {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintop toggle [--id N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Toggle a window's pin. Without --id the foreground window is targeted.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	id := windowFlag(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	data, err := client.TogglePin(uintptr(*id))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if data.IsPinned {
		fmt.Printf("pinned [%d] %s\n", data.WindowID, data.Title)
	} else {
		fmt.Printf("unpinned [%d]\n", data.WindowID)
	}
	return 0
}

func runOpacity(args []string) int {
	fs := flag.NewFlagSet("opacity", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintop opacity [--id N] <percent>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Set a pinned window's opacity. Values are clamped to 20-100.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	id := windowFlag(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "opacity requires <percent>")
		fs.Usage()
		return 2
	}
	percent, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid percent %q\n", fs.Arg(0))
		return 2
	}

	client := ipc.NewClient()
	data, err := client.SetOpacity(uintptr(*id), percent)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("opacity [%d] %s -> %d%%\n", data.WindowID, data.Title, data.Opacity)
	return 0
}

func runFocus(args []string) int {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintop focus --id N")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Bring a window to the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	id := windowFlag(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *id == 0 {
		fmt.Fprintln(os.Stderr, "focus requires --id")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Focus(uintptr(*id)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runSave(args []string) int {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintop save")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to persist the current pin snapshot now.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.Save(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("saved")
	return 0
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintop watch")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Stream daemon events (pin-toggled, opacity-changed, window-destroyed,")
		fmt.Fprintln(os.Stderr, "pin-error) as JSON lines until interrupted.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	enc := json.NewEncoder(os.Stdout)
	err := client.Subscribe(func(msg ipc.EventMessage) error {
		return enc.Encode(msg)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  pintop config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  pintop config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/pintop/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/pintop/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		var err error
		if *printDefaults {
			cfg = config.DefaultConfig()
		} else if *path == "" {
			cfg, err = config.Load()
		} else {
			cfg, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runAutostart(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  pintop autostart on")
		fmt.Fprintln(os.Stderr, "  pintop autostart off")
		fmt.Fprintln(os.Stderr, "  pintop autostart status")
		return 2
	}

	switch args[0] {
	case "on":
		if err := autostart.Enable(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("autostart: enabled")
		return 0
	case "off":
		if err := autostart.Disable(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("autostart: disabled")
		return 0
	case "status":
		enabled, err := autostart.Enabled()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("autostart: %v\n", enabled)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown autostart subcommand: %s\n", args[0])
		return 2
	}
}

func runMCP(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: pintop mcp serve")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the MCP server on stdio. Tools forward to the running daemon.")
		return 2
	}

	switch args[0] {
	case "serve":
		server := mcp.NewServer()
		if err := server.Run(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp subcommand: %s\n", args[0])
		return 2
	}
}
