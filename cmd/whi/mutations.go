package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newMoveCmd(pathOverride *string) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move the PATH entry at <from> to position <to>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			ops, err := d.Move(currentPathValue(*pathOverride), from, to)
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
}

func newSwitchCmd(pathOverride *string) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <i> <j>",
		Short: "Swap the PATH entries at positions <i> and <j>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			j, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			ops, err := d.Swap(currentPathValue(*pathOverride), i, j)
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
}

func newCleanCmd(pathOverride *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove duplicate PATH entries, keeping the first occurrence of each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			ops, err := d.Clean(currentPathValue(*pathOverride))
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
}

func newDeleteCmd(pathOverride *string) *cobra.Command {
	var fuzzy bool
	var binName string
	cmd := &cobra.Command{
		Use:   "delete <index|pattern>...",
		Short: "Delete one or more PATH entries by index, or by fuzzy match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			current := currentPathValue(*pathOverride)
			if fuzzy {
				ops, err := d.DeleteFuzzy(current, args[0], binName)
				if err != nil {
					return err
				}
				return emit(ops)
			}
			indices := make([]int, len(args))
			for i, a := range args {
				n, err := strconv.Atoi(a)
				if err != nil {
					return err
				}
				indices[i] = n
			}
			ops, err := d.Delete(current, indices)
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "treat the argument as a fuzzy search pattern")
	cmd.Flags().StringVar(&binName, "exec", "", "restrict fuzzy matches to directories containing this executable")
	return cmd
}

func newPreferCmd(pathOverride *string) *cobra.Command {
	var fuzzy bool
	var binName string
	cmd := &cobra.Command{
		Use:   "prefer <index|path|pattern>",
		Short: "Move a PATH entry to the front, by index, exact path, or fuzzy match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			current := currentPathValue(*pathOverride)
			if fuzzy {
				ops, err := d.PreferFuzzy(current, args[0], binName)
				if err != nil {
					return err
				}
				return emit(ops)
			}
			if n, err := strconv.Atoi(args[0]); err == nil {
				ops, err := d.PreferIndex(current, n)
				if err != nil {
					return err
				}
				return emit(ops)
			}
			ops, err := d.PreferPath(current, args[0])
			if err != nil {
				return err
			}
			return emit(ops)
		},
	}
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "treat the argument as a fuzzy search pattern")
	cmd.Flags().StringVar(&binName, "exec", "", "restrict fuzzy matches to directories containing this executable")
	return cmd
}
