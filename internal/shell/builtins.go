package shell

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/zeebo/blake3"
)

// builtins is indexed by name in New.
var builtins = []command{
	{name: "mkdir", usage: "mkdir PATH", help: "Create a directory", minArgs: 1, maxArgs: 1, run: (*Shell).mkdir},
	{name: "touch", usage: "touch PATH", help: "Create an empty file", minArgs: 1, maxArgs: 1, run: (*Shell).touch},
	{name: "write", usage: "write PATH TEXT...", help: "Append text to a file", minArgs: 2, maxArgs: -1, run: (*Shell).write},
	{name: "cat", usage: "cat PATH", help: "Print a file", minArgs: 1, maxArgs: 1, run: (*Shell).cat},
	{name: "ls", usage: "ls PATH", help: "List a directory", minArgs: 1, maxArgs: 1, run: (*Shell).ls},
	{name: "rm", usage: "rm PATH", help: "Remove a file or directory tree", minArgs: 1, maxArgs: 1, run: (*Shell).rm},
	{name: "stat", usage: "stat PATH", help: "Describe an entry", minArgs: 1, maxArgs: 1, run: (*Shell).stat},
	{name: "sum", usage: "sum PATH", help: "Print the BLAKE3 digest of a file", minArgs: 1, maxArgs: 1, run: (*Shell).sum},
	{name: "drives", usage: "drives", help: "List mounted drives", maxArgs: 0, run: (*Shell).drives},
	{name: "umount", usage: "umount LETTER", help: "Unmount a drive", minArgs: 1, maxArgs: 1, run: (*Shell).umount},
	{name: "help", usage: "help", help: "Show this help message", maxArgs: 0, run: (*Shell).help},
}

func (s *Shell) mkdir(ctx context.Context, args []string) error {
	return s.Kernel.Mkdir(ctx, args[0])
}

func (s *Shell) touch(ctx context.Context, args []string) error {
	return s.Kernel.Create(ctx, args[0])
}

func (s *Shell) write(ctx context.Context, args []string) error {
	return s.Kernel.WriteFile(ctx, args[0], []byte(strings.Join(args[1:], " ")))
}

func (s *Shell) cat(ctx context.Context, args []string) error {
	data, err := s.Kernel.ReadFile(ctx, args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.Stdout, string(data))
	return err
}

func (s *Shell) ls(ctx context.Context, args []string) error {
	dir, err := s.Kernel.OpenDir(ctx, args[0])
	if err != nil {
		return err
	}
	defer dir.Close()

	names, err := dir.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(s.Stdout, name)
	}
	return nil
}

func (s *Shell) rm(ctx context.Context, args []string) error {
	return s.Kernel.Remove(ctx, args[0])
}

// stat opens the entry as a directory first and falls back to a file.
func (s *Shell) stat(ctx context.Context, args []string) error {
	entry, err := s.Kernel.Find(ctx, args[0])
	if err != nil {
		return err
	}
	defer entry.Release()

	if dir, err := entry.OpenDir(ctx); err == nil {
		defer dir.Close()

		count := "?"
		if names, err := dir.List(ctx); err == nil {
			count = humanize.Comma(int64(len(names)))
		}
		fmt.Fprintf(s.Stdout, "%s: directory, %s entries, ops=%s\n", args[0], count, dir.Ops())
		return nil
	}

	file, err := entry.Open(ctx)
	if err != nil {
		return err
	}
	defer file.Close()

	size, err := io.Copy(io.Discard, vfs.NewReader(ctx, file))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Stdout, "%s: file, %s (%s bytes), ops=%s\n",
		args[0], humanize.IBytes(uint64(size)), humanize.Comma(size), file.Ops())
	return nil
}

func (s *Shell) sum(ctx context.Context, args []string) error {
	file, err := s.Kernel.Open(ctx, args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	h := blake3.New()
	if _, err := io.Copy(h, vfs.NewReader(ctx, file)); err != nil {
		return err
	}
	fmt.Fprintf(s.Stdout, "%s  %s\n", hex.EncodeToString(h.Sum(nil)), args[0])
	return nil
}

func (s *Shell) drives(ctx context.Context, args []string) error {
	w := tabwriter.NewWriter(s.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DRIVE\tBACKEND\tCAPABILITIES")
	for _, info := range s.Kernel.Drives() {
		caps := ""
		if drive, err := s.Kernel.Drive(info.Letter); err == nil {
			caps = drive.Capabilities(ctx).String()
		}
		fmt.Fprintf(w, "%s:\t%s\t%s\n", info.Letter, info.Backend, caps)
	}
	return w.Flush()
}

func (s *Shell) umount(ctx context.Context, args []string) error {
	letter, err := vfs.ParseLetter(strings.TrimSuffix(args[0], ":"))
	if err != nil {
		return err
	}
	return s.Kernel.Unmount(ctx, letter)
}

func (s *Shell) help(ctx context.Context, args []string) error {
	w := tabwriter.NewWriter(s.Stdout, 0, 4, 2, ' ', 0)
	for _, name := range s.Commands() {
		cmd := s.commands[name]
		fmt.Fprintf(w, "%s\t%s\n", cmd.usage, cmd.help)
	}
	fmt.Fprintln(w, "exit\tLeave the shell")
	return w.Flush()
}
