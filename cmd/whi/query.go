package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newQueryCmd(pathOverride *string) *cobra.Command {
	var (
		all      bool
		one      bool
		print0   bool
		noIndex  bool
		color    string
		binName  string
	)
	cmd := &cobra.Command{
		Use:   "query [pattern]",
		Short: "Search PATH entries (run as \"whi query\"; a bare \"whi\" does not search)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := currentPathValue(*pathOverride)
			pattern := strings.Join(args, " ")
			matches := current.FindFuzzy(pattern, binName)
			if len(matches) == 0 {
				return fmt.Errorf("no matching PATH entries")
			}
			if one {
				matches = matches[:1]
			}
			sep := "\n"
			if print0 {
				sep = "\x00"
			}
			var b strings.Builder
			for _, m := range matches {
				if !noIndex {
					fmt.Fprintf(&b, "%d\t", m.Index)
				}
				b.WriteString(m.Path)
				b.WriteString(sep)
				if !all {
					break
				}
			}
			fmt.Print(b.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print every match instead of only the first")
	cmd.Flags().BoolVar(&one, "one", false, "print at most one match")
	cmd.Flags().BoolVar(&print0, "print0", false, "NUL-separate output instead of newline")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "omit the 1-based PATH index prefix")
	cmd.Flags().StringVar(&color, "color", "auto", "auto|never|always")
	cmd.Flags().StringVar(&binName, "exec", "", "require the directory to contain this executable")
	cmd.Flags().Bool("full", false, "show the fully resolved, symlink-followed path")
	cmd.Flags().Bool("follow-symlinks", false, "resolve symlinks before matching")
	cmd.Flags().Bool("quiet", false, "suppress non-essential stderr output")
	cmd.Flags().Bool("silent", false, "suppress all stderr output")
	cmd.Flags().Bool("show-nonexec", false, "include directories without a matching executable")
	cmd.Flags().Bool("stat", false, "show file metadata alongside each match")
	return cmd
}
