// Package shell implements the line-oriented command interpreter behind the
// dittovfs CLI. Every command is a thin wrapper around one Kernel operation.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/marmos91/dittovfs/internal/logger"
	"github.com/marmos91/dittovfs/pkg/vfs"
)

// ErrUsage is returned when a command gets the wrong number of arguments.
var ErrUsage = errors.New("usage")

// ErrUnknownCommand is returned for a command name the shell does not know.
var ErrUnknownCommand = errors.New("unknown command")

// command is one built-in.
type command struct {
	name  string
	usage string
	help  string
	// minArgs is the minimum number of arguments; maxArgs < 0 means unbounded
	minArgs, maxArgs int
	run              func(s *Shell, ctx context.Context, args []string) error
}

// Shell executes commands against a Kernel.
//
// Output goes to Stdout; per-command errors from Run go to Stderr.
type Shell struct {
	Kernel *vfs.Kernel
	Stdout io.Writer
	Stderr io.Writer
	Prompt string

	commands map[string]*command
}

// New creates a shell driving kernel.
func New(kernel *vfs.Kernel, stdout, stderr io.Writer) *Shell {
	s := &Shell{
		Kernel:   kernel,
		Stdout:   stdout,
		Stderr:   stderr,
		commands: make(map[string]*command),
	}
	for i := range builtins {
		s.commands[builtins[i].name] = &builtins[i]
	}
	return s
}

// Execute runs one command line. Blank lines and lines starting with '#'
// are ignored.
func (s *Shell) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	cmd, ok := s.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
	}

	logger.Debug("shell: %s %v", name, args)
	return cmd.run(s, ctx, args)
}

// Run reads commands from r until EOF or "exit".
//
// With stopOnError set the first failing command ends the run and its error
// is returned; otherwise failures are printed to Stderr and reading goes on.
func (s *Shell) Run(ctx context.Context, r io.Reader, stopOnError bool) error {
	scanner := bufio.NewScanner(r)
	for {
		if s.Prompt != "" {
			fmt.Fprint(s.Stdout, s.Prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return nil
		}

		if err := s.Execute(ctx, line); err != nil {
			if stopOnError {
				return err
			}
			fmt.Fprintf(s.Stderr, "error: %v\n", err)
		}
	}
}

// Commands returns the built-in command names in sorted order.
func (s *Shell) Commands() []string {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
