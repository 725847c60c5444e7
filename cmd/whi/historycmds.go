package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func parseCount(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	return strconv.Atoi(args[0])
}

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo [N]",
		Short: "Move the active scope's history cursor N steps earlier (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseCount(args)
			if err != nil {
				return err
			}
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			ops, err := d.Undo(n)
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
}

func newRedoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo [N]",
		Short: "Move the active scope's history cursor N steps later (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseCount(args)
			if err != nil {
				return err
			}
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			ops, err := d.Redo(n)
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Move the active scope's history cursor to entry 0",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			ops, err := d.Reset()
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
}
