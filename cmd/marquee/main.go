package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/naveenspark/marquee/internal/config"
	"github.com/naveenspark/marquee/internal/logging"
	"github.com/naveenspark/marquee/internal/session"
	"github.com/naveenspark/marquee/internal/tui"
	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
	"github.com/naveenspark/marquee/pkg/tokenstore"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err) //nolint:errcheck // best-effort
		os.Exit(1)
	}
}

// globals are the flags accepted before or after any command.
type globals struct {
	verbose   bool
	ephemeral bool
}

// splitGlobals pulls the global flags out of args.
func splitGlobals(args []string) (globals, []string) {
	var g globals
	rest := make([]string, 0, len(args))
	for _, a := range args {
		switch a {
		case "--verbose":
			g.verbose = true
		case "--ephemeral":
			g.ephemeral = true
		default:
			rest = append(rest, a)
		}
	}
	return g, rest
}

// app is everything a command needs, built once per invocation.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	api      *client.Client
	sess     *session.Manager
	in       io.Reader
	out      io.Writer
	closeLog func() error
}

func setup(g globals, in io.Reader, out, errOut io.Writer) (*app, error) {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{File: cfg.LogPath(), Debug: cfg.Debug}
	if g.verbose {
		logOpts = logging.Options{Console: errOut, Debug: true}
	}
	log, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	var store tokenstore.Store
	if g.ephemeral {
		store = tokenstore.NewMemoryStore()
	} else {
		fs, err := tokenstore.OpenFile(cfg.TokenPath())
		if err != nil {
			// A corrupt token file still yields a usable empty store.
			log.Warn().Err(err).Str("path", cfg.TokenPath()).Msg("token file unreadable, starting signed out")
		}
		store = fs
	}

	api := client.New(cfg.APIURL, store,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(log),
		client.WithRateLimit(cfg.Limiter.Rps, cfg.Limiter.Burst),
	)
	sess := session.New(api, store, log)
	api.OnInvalidate(sess.Expire)
	sess.Restore()

	return &app{
		cfg:      cfg,
		log:      log,
		api:      api,
		sess:     sess,
		in:       in,
		out:      out,
		closeLog: closeLog,
	}, nil
}

func run(args []string, in io.Reader, out, errOut io.Writer) error {
	g, args := splitGlobals(args)

	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(out, "marquee "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(out)
		return nil
	}

	a, err := setup(g, in, out, errOut)
	if err != nil {
		return err
	}
	defer a.closeLog() //nolint:errcheck // best-effort close

	switch cmd {
	case "":
		return a.runTUI()
	case "login":
		return a.runLogin(args)
	case "register":
		return a.runRegister(args)
	case "logout":
		return a.runLogout()
	case "whoami":
		return a.runWhoami()
	case "movies", "ls":
		return a.runMovies(args)
	case "show":
		return a.runShow(args)
	case "rate":
		return a.runRate(args)
	}
	return fmt.Errorf("unknown command %q (see: marquee help)", cmd)
}

func (a *app) runTUI() error {
	m := tui.NewApp(a.api, a.sess, tui.Options{WebURL: a.cfg.WebURL, PageSize: a.cfg.PageSize})
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Session changes made outside the TUI's own actions, such as a failed
	// refresh, are forwarded into the program.
	unsubscribe := a.sess.Subscribe(func(id *domain.Identity) {
		p.Send(tui.IdentityChangedMsg{Identity: id})
	})
	defer unsubscribe()

	a.log.Info().Str("api", a.cfg.APIURL).Str("state", a.sess.State().String()).Msg("tui started")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, banner())
	commands := []struct{ cmd, desc string }{
		{"marquee", "Browse and rate movies (interactive)"},
		{"marquee login", "Sign in with email and password"},
		{"marquee register", "Create an account"},
		{"marquee logout", "Clear your session"},
		{"marquee whoami", "Show who is signed in"},
		{"marquee movies [flags]", "List movies (--genre --search --min-year --max-year --page --limit)"},
		{"marquee show <id>", "Show a movie and its ratings"},
		{"marquee rate <id> <1-5> [review]", "Rate a movie or update your rating"},
		{"marquee version", "Show version"},
		{"marquee help", "You are here"},
	}
	bold := color.New(color.Bold)
	fmt.Fprintln(out, "  Commands:")
	for _, c := range commands {
		fmt.Fprintf(out, "    %s  %s\n", bold.Sprintf("%-34s", c.cmd), c.desc)
	}
	fmt.Fprintln(out, "\n  Global flags:")
	fmt.Fprintf(out, "    %s  %s\n", bold.Sprintf("%-34s", "--verbose"), "log to stderr at debug level")
	fmt.Fprintf(out, "    %s  %s\n", bold.Sprintf("%-34s", "--ephemeral"), "keep tokens in memory only")
	fmt.Fprintln(out)
	for _, line := range strings.Split(config.Describe(), "\n") {
		fmt.Fprintln(out, "  "+line)
	}
}
