package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/slotarena/internal/config"
)

// Run is the main entry point. Returns exit code.
// sigCh may be nil; a received signal cancels the running command.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("arenactl", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use specified config `file`")
	engine := globals.String("engine", "", "Engine: sparse, hop or dense")
	versionName := globals.String("version", "", "Version: default, tiny or unversioned")
	verbose := globals.BoolP("verbose", "v", false, "Log debug output to stderr")

	var argv []string
	if len(args) > 1 {
		argv = args[1:]
	}

	parseErr := globals.Parse(argv)

	// Commands are bound to cfg before it is loaded so usage can list them
	// even when loading fails.
	cfg := &config.Config{}
	logger := newLogger(errOut, parseErr == nil && *verbose)

	commands := []*Command{
		ReplCmd(cfg, in, logger),
		BenchCmd(cfg, logger),
		CheckCmd(cfg, logger),
		WalkthroughCmd(cfg),
		PrintConfigCmd(cfg),
	}

	if parseErr != nil {
		if errors.Is(parseErr, flag.ErrHelp) {
			printUsage(out, globals, commands)

			return 0
		}

		fprintln(errOut, "error:", parseErr)
		printUsage(errOut, globals, commands)

		return 1
	}

	rest := globals.Args()
	if len(rest) == 0 {
		printUsage(out, globals, commands)

		return 0
	}

	loaded, err := config.Load(config.LoadInput{
		WorkDirOverride: *workDir,
		ConfigPath:      *configPath,
		Engine:          *engine,
		Version:         *versionName,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	*cfg = loaded
	logger.Debug("config loaded", "engine", cfg.Engine, "version", cfg.Version,
		"global", cfg.Sources.Global, "project", cfg.Sources.Project)

	name := rest[0]

	var cmd *Command

	for _, c := range commands {
		if c.Name() == name {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, globals, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case sig := <-sigCh:
				logger.Debug("signal received", "signal", sig)
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(out, errOut), rest[1:])
}

// newLogger returns a text logger on w at Warn, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet, commands []*Command) {
	fprintln(w, `arenactl - generational arena explorer

Usage: arenactl [options] <command> [args]

Options:`)

	var buf strings.Builder

	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(&strings.Builder{})
	_, _ = io.WriteString(w, buf.String())

	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}
}
