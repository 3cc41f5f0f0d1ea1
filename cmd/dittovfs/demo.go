package main

import (
	"fmt"

	"github.com/marmos91/dittovfs/internal/logger"
	"github.com/marmos91/dittovfs/pkg/backend/memory"
	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/spf13/cobra"
)

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Write and read back a file on a scratch memory drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.logLevel != "" {
				logger.SetLevel(a.logLevel)
			}
			ctx := cmd.Context()

			kernel := vfs.NewKernel(nil)
			defer kernel.Close(ctx)

			if err := kernel.Mount('A', memory.NewDrive(memory.Config{})); err != nil {
				return err
			}
			if err := kernel.Mkdir(ctx, "A:/foo"); err != nil {
				return err
			}
			if err := kernel.Create(ctx, "A:/foo/bar.txt"); err != nil {
				return err
			}
			if err := kernel.WriteFile(ctx, "A:/foo/bar.txt", []byte("Hello World!")); err != nil {
				return err
			}

			data, err := kernel.ReadFile(ctx, "A:/foo/bar.txt")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Read %s\n", data)
			return nil
		},
	}
}
