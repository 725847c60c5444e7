package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"whi/internal/dispatch"
	"whi/internal/pathval"
	"whi/internal/transition"
)

// sessionPID resolves the parent shell PID that scopes session state:
// WHI_SESSION_PID if the shell integration script has set it (so a
// subshell still resolves to the original interactive shell), otherwise
// the OS-reported parent process ID.
func sessionPID() int {
	if v := os.Getenv("WHI_SESSION_PID"); v != "" {
		if pid, err := strconv.Atoi(v); err == nil {
			return pid
		}
	}
	return os.Getppid()
}

func currentPathValue(override string) pathval.PathValue {
	if override != "" {
		return pathval.Parse(override)
	}
	return pathval.Parse(os.Getenv("PATH"))
}

func emit(ops []transition.Op) error {
	return transition.Emit(os.Stdout, ops)
}

func newRootCmd() *cobra.Command {
	var pathOverride string

	root := &cobra.Command{
		Use:           "whi",
		Short:         "Inspect and manage PATH, with history and venv scopes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&pathOverride, "path", "", "use this PATH value instead of the environment's")

	root.AddCommand(
		newQueryCmd(&pathOverride),
		newMoveCmd(&pathOverride),
		newSwitchCmd(&pathOverride),
		newCleanCmd(&pathOverride),
		newDeleteCmd(&pathOverride),
		newPreferCmd(&pathOverride),
		newUndoCmd(),
		newRedoCmd(),
		newResetCmd(),
		newSaveCmd(&pathOverride),
		newLoadCmd(),
		newListCmd(),
		newRmpCmd(),
		newApplyCmd(),
		newDiffCmd(&pathOverride),
		newFileCmd(),
		newSourceCmd(&pathOverride),
		newExitCmd(),
		newInitCmd(),
		newHiddenInitCmd(),
		newShouldAutoActivateCmd(),
		newLoadSavedPathCmd(),
	)
	return root
}

func newDispatcher() (*dispatch.Dispatcher, error) {
	return dispatch.New(sessionPID())
}
