package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"whi/internal/dispatch"
	"whi/internal/venv"
)

func snapshotEnv() venv.EnvSnapshot {
	snap := make(venv.EnvSnapshot)
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			snap[name] = value
		}
	}
	return snap
}

func newFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file",
		Short: "Print the path to the whifile governing the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			path, _, err := dispatch.VenvFile(dir)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func newSourceCmd(pathOverride *string) *cobra.Command {
	return &cobra.Command{
		Use:   "source",
		Short: "Activate the venv governed by the current directory's whifile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			ops, err := d.VenvSource(dir, currentPathValue(*pathOverride), snapshotEnv())
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
}

func newExitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exit",
		Short: "Deactivate the active venv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			ops, err := d.VenvExit(snapshotEnv())
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
}
