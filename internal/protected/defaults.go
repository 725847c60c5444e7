package protected

// DefaultVars returns the built-in protected environment variable names
// seeded into a fresh protected_vars file: the variables whose loss would
// break shell interactivity, locale-dependent tooling, SSH/X11/Wayland
// forwarding, or whi's own session bookkeeping.
func DefaultVars() Set {
	return NewSet([]string{
		"PATH", "HOME", "USER", "LOGNAME", "SHELL",
		"TERM", "TERMINFO", "TERM_PROGRAM", "TERM_PROGRAM_VERSION",
		"LANG", "LC_ALL", "LC_CTYPE", "LC_MESSAGES", "LC_NUMERIC", "LC_COLLATE", "LC_TIME",
		"IFS", "PWD", "OLDPWD", "SHLVL",
		"TMPDIR", "TMP", "TEMP",
		"DISPLAY", "WAYLAND_DISPLAY",
		"XDG_RUNTIME_DIR", "XDG_SESSION_TYPE", "XDG_DATA_DIRS",
		"XAUTHORITY", "DBUS_SESSION_BUS_ADDRESS",
		"SSH_AUTH_SOCK", "SSH_AGENT_PID", "SSH_CONNECTION", "SSH_CLIENT", "SSH_TTY",
		"__CF_USER_TEXT_ENCODING", "__CFBundleIdentifier", "XPC_FLAGS", "XPC_SERVICE_NAME",
		"HOMEBREW_PREFIX", "HOMEBREW_CELLAR", "HOMEBREW_REPOSITORY",
		"GHOSTTY_BIN_DIR", "GHOSTTY_RESOURCES_DIR", "GHOSTTY_SHELL_FEATURES",
		"COLORTERM", "COMMAND_MODE", "MANPATH",
		"WHI_SHELL_INITIALIZED", "WHI_SESSION_PID", "__WHI_BIN", "WHI_VENV_NAME", "WHI_VENV_DIR",
	})
}
