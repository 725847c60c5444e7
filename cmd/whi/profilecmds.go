package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"whi/internal/dispatch"
)

func newSaveCmd(pathOverride *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save [name]",
		Short: "Save the current PATH (to the saved-PATH slot, or to a named profile)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current := currentPathValue(*pathOverride)
			if len(args) == 1 {
				return dispatch.SaveProfile(args[0], current)
			}
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			return d.Save(current)
		},
	}
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Apply a named profile's PATH to the live PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			ops, err := d.LoadNamed(args[0])
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profile names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := dispatch.ListProfiles()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}

func newRmpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rmp <name>",
		Short: "Remove a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch.RemoveProfile(args[0])
		},
	}
}

func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Re-apply the saved-PATH slot to the live PATH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			ops, err := d.Apply()
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
}
