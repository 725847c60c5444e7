package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"whi/internal/diffengine"
)

func kindLabel(k diffengine.ChangeKind) string {
	switch k {
	case diffengine.Added:
		return "added"
	case diffengine.Removed:
		return "removed"
	case diffengine.MovedExplicit:
		return "moved"
	case diffengine.MovedImplicit:
		return "shifted"
	default:
		return "unchanged"
	}
}

func newDiffCmd(pathOverride *string) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Compare the current PATH against the saved-PATH slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher()
			if err != nil {
				return err
			}
			entries, err := d.Diff(currentPathValue(*pathOverride))
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s\t%s\n", kindLabel(e.Kind), e.Path)
			}
			return nil
		},
	}
}
