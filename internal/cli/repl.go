package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/slotarena/internal/config"
)

// ReplCmd returns the repl command. Lines are read with line editing when in
// is a terminal, and plainly otherwise so scripts can be piped in.
func ReplCmd(cfg *config.Config, in io.Reader, logger *slog.Logger) *Command {
	flags := flag.NewFlagSet("repl", flag.ContinueOnError)
	noHistory := flags.Bool("no-history", false, "Do not load or save line history")

	return &Command{
		Flags: flags,
		Usage: "repl [--no-history]",
		Short: "Interactive shell over an arena of strings",
		Long: `Start an interactive shell over an arena of string values, using the
configured engine and version. Type 'help' at the prompt for commands.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			s, err := newSession(cfg.Engine, cfg.Version)
			if err != nil {
				return err
			}

			logger.Debug("repl start", "engine", s.describe(), "history", cfg.HistoryPath)

			if f, ok := in.(*os.File); ok && isTerminal(f) {
				historyPath := cfg.HistoryPath
				if *noHistory {
					historyPath = ""
				}

				return runInteractive(ctx, o, s, historyPath, logger)
			}

			return runScript(ctx, o, s, in)
		},
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()

	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// runScript executes newline-separated commands from in. Errors are printed
// and execution continues, matching the interactive shell.
func runScript(ctx context.Context, o *IO, s interpreter, in io.Reader) error {
	if in == nil {
		return nil
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		quit, err := s.exec(o, scanner.Text())
		if err != nil {
			o.ErrPrintln("error:", err)
		}

		if quit {
			return nil
		}
	}

	err := scanner.Err()
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

func runInteractive(ctx context.Context, o *IO, s interpreter, historyPath string, logger *slog.Logger) error {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completer)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			_ = f.Close()
		}
	}

	o.Printf("arenactl - %s\n", s.describe())
	o.Println("Type 'help' for available commands.")

	for ctx.Err() == nil {
		text, err := line.Prompt("arena> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				o.Println()

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		line.AppendHistory(text)

		quit, err := s.exec(o, text)
		if err != nil {
			o.ErrPrintln("error:", err)
		}

		if quit {
			break
		}
	}

	if historyPath == "" {
		return nil
	}

	err := saveHistory(historyPath, line.WriteHistory)
	if err != nil {
		o.Warn("history not saved", err.Error())
	} else {
		logger.Debug("history saved", "path", historyPath)
	}

	return nil
}

// saveHistory renders history with write and replaces path atomically, so a
// crash mid-write never truncates the existing file.
func saveHistory(path string, write func(io.Writer) (int, error)) error {
	var buf bytes.Buffer

	_, err := write(&buf)
	if err != nil {
		return fmt.Errorf("rendering history: %w", err)
	}

	err = atomic.WriteFile(path, &buf)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

func completer(line string) []string {
	var out []string

	for _, c := range replCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}

	return out
}
