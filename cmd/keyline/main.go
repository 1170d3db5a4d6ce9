// Package main is the entry point for the keyline demo editor: a
// single-line editing loop wired to the terminal boundary, with live
// configuration reload and optional user-defined widgets.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/keyline/internal/config"
	"github.com/dshills/keyline/internal/edit"
	"github.com/dshills/keyline/internal/edit/keymap"
	"github.com/dshills/keyline/internal/edit/textunit"
	"github.com/dshills/keyline/internal/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	configPath string
	scriptPath string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	file, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg, err := config.SessionConfig(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	mgr, err := term.NewManager(textunit.NewCodec(cfg.Mode))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open terminal: %v\n", err)
		return 1
	}
	defer mgr.Close()

	cfg.Bell = func(string) { mgr.Beep() }
	session := edit.NewSession(cfg)
	defer session.Close()

	if err := config.Apply(file, session); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.scriptPath != "" {
		src, err := os.ReadFile(opts.scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading script: %v\n", err)
			return 1
		}
		if err := session.UserFuncs().Load(string(src)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: loading script: %v\n", err)
			return 1
		}
	}

	if opts.configPath != "" {
		watcher, err := config.NewWatcher(opts.configPath, func(f config.File, err error) {
			if err != nil {
				session.Bell("config reload: " + err.Error())
				return
			}
			if err := config.Apply(f, session); err != nil {
				session.Bell("config reload: " + err.Error())
			}
		})
		if err == nil {
			defer watcher.Close()
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT)
	go func() {
		for range signals {
			session.NotifyInterrupt()
		}
	}()

	if err := loop(session, mgr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loop reads keys, dispatches them, and redraws until end-of-input.
func loop(session *edit.Session, mgr *term.Manager) error {
	cols, _ := mgr.Size()
	win, err := mgr.CreateWindow("line", 2, cols, 0, 0)
	if err != nil {
		return err
	}

	const prompt = "> "
	hist := 0
	for {
		draw(session, win, prompt)

		timeout := time.Duration(0)
		if session.AwaitingMore() {
			timeout = session.Keymaps().Policy().ResolveTimeout
			if timeout == 0 {
				// Zero policy takes the shorter match without waiting.
				session.FlushPending()
				continue
			}
		}
		ev, ok := mgr.ReadKey(true, timeout)
		if !ok {
			if session.AwaitingMore() {
				// Ambiguous sequence settled by the timeout.
				session.FlushPending()
				continue
			}
			return nil
		}

		switch {
		case ev.Resize:
			session.NotifyResize()
			continue
		case ev.Special != "":
			session.HandleKey(keymap.SpecialKey(ev.Special))
		default:
			session.HandleKey(keymap.UnitKey(ev.Unit))
		}

		if session.Accepted() {
			win.Move(1, 0)
			win.WriteString("accepted: " + session.Buffer().String(session.Codec()))
			session.ResetAccepted()
			hist++
			session.SetHist(hist, nil)
		}
	}
}

func draw(session *edit.Session, win *term.Window, prompt string) {
	win.Move(0, 0)
	win.WriteString(prompt)
	for _, u := range session.Buffer().Units() {
		win.WriteUnit(u)
	}
	win.WriteString(" ")
	col := len(prompt)
	for _, u := range session.Buffer().Slice(0, session.Buffer().Cursor()) {
		w := session.Codec().Width(u)
		if w <= 0 {
			w = 1
		}
		col += w
	}
	win.Move(0, col)
	win.Refresh()
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.scriptPath, "script", "", "Lua script defining user widget functions")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Keyline - interactive line editing core\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keyline [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("Keyline %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}
	return opts
}
