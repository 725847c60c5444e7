package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"whi/internal/config"
	"whi/internal/dispatch"
)

// shellSnippets holds the integration script body per shell name. These
// are intentionally minimal: the full interactive wiring (prompt hooks,
// directory-change traps) is shell integration territory, explicitly out
// of scope for the core engine.
var shellSnippets = map[string]string{
	"bash": "whi() { eval \"$(command whi __dispatch \"$@\")\"; }\n",
	"zsh":  "whi() { eval \"$(command whi __dispatch \"$@\")\"; }\n",
	"fish": "function whi; command whi __dispatch $argv | source; end\n",
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [shell]",
		Short: "Print the shell integration snippet for the given shell",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := ""
			if len(args) == 1 {
				shell = args[0]
			}
			if shell == "" {
				cfg, err := config.Load(config.DefaultPath())
				if err != nil {
					return err
				}
				shell = cfg.DefaultShell
			}
			snippet, ok := shellSnippets[shell]
			if !ok {
				return fmt.Errorf("no integration snippet for shell %q", shell)
			}
			fmt.Print(snippet)
			return nil
		},
	}
}

func newHiddenInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "__init <session-pid>",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Setenv("WHI_SHELL_INITIALIZED", "1")
			return nil
		},
	}
}

func newShouldAutoActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "__should_auto_activate",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.DefaultPath())
			if err != nil {
				return err
			}
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			if _, _, err := dispatch.VenvFile(dir); err != nil {
				os.Exit(1)
			}
			if !cfg.AutoActivate {
				os.Exit(1)
			}
			return nil
		},
	}
}

func newLoadSavedPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "__load_saved_path <shell>",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := dispatch.ReadSavedPath()
			if err != nil {
				return err
			}
			fmt.Println(saved.Serialize())
			return nil
		},
	}
}
