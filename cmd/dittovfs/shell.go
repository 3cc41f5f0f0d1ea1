package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/dittovfs/internal/shell"
	"github.com/spf13/cobra"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Mount the configured drives and read commands from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			kernel, shutdown, err := a.boot(ctx)
			if err != nil {
				return err
			}
			defer shutdown()

			sh := shell.New(kernel, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
				sh.Prompt = "dittovfs> "
			}
			return sh.Run(ctx, cmd.InOrStdin(), false)
		},
	}
}

func newExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "exec COMMAND...",
		Short:   "Run shell commands given as arguments, stopping at the first error",
		Example: `  dittovfs exec "mkdir A:/docs" "touch A:/docs/a.txt" "ls A:/docs"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kernel, shutdown, err := a.boot(ctx)
			if err != nil {
				return err
			}
			defer shutdown()

			sh := shell.New(kernel, cmd.OutOrStdout(), cmd.ErrOrStderr())
			for _, line := range args {
				if err := sh.Execute(ctx, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newDrivesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drives",
		Short: "Mount the configured drives and list them with their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kernel, shutdown, err := a.boot(ctx)
			if err != nil {
				return err
			}
			defer shutdown()

			return shell.New(kernel, cmd.OutOrStdout(), cmd.ErrOrStderr()).Execute(ctx, "drives")
		},
	}
}
