// Package shellexpand implements the hand-rolled variable-expansion
// scanner used when reading manifest and venv environment values. It
// recognizes $VAR, ${VAR}, a leading ~ or ~/, and $(cmd)/`cmd` command
// substitution; it is deliberately not a shell, so constructs like
// quoting, globbing, or pipelines are passed through literally.
package shellexpand

import (
	"os"
	"os/exec"
	"strings"
)

// Expand performs variable and command-substitution expansion on s using
// lookup to resolve variable names (os.Getenv semantics: an undefined
// variable expands to the empty string). "~user" forms are left literal.
func Expand(s string, lookup func(string) string) string {
	if lookup == nil {
		lookup = os.Getenv
	}
	s = expandLeadingTilde(s, lookup)
	return expandVarsAndCommands(s, lookup)
}

func expandLeadingTilde(s string, lookup func(string) string) string {
	if s == "~" {
		return lookup("HOME")
	}
	if rest, ok := strings.CutPrefix(s, "~/"); ok {
		home := lookup("HOME")
		if home == "" {
			return s
		}
		return home + "/" + rest
	}
	return s
}

func expandVarsAndCommands(s string, lookup func(string) string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '$' && i+1 < len(s) && s[i+1] == '(':
			end := matchParen(s, i+2)
			cmd := s[i+2 : end]
			b.WriteString(runCommand(cmd))
			i = end + 1
		case c == '`':
			end := strings.IndexByte(s[i+1:], '`')
			if end < 0 {
				b.WriteByte(c)
				i++
				continue
			}
			cmd := s[i+1 : i+1+end]
			b.WriteString(runCommand(cmd))
			i = i + 1 + end + 1
		case c == '$' && i+1 < len(s) && s[i+1] == '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				b.WriteByte(c)
				i++
				continue
			}
			name := s[i+2 : i+2+end]
			b.WriteString(lookup(name))
			i = i + 2 + end + 1
		case c == '$' && i+1 < len(s) && isVarStart(s[i+1]):
			j := i + 1
			for j < len(s) && isVarPart(s[j]) {
				j++
			}
			b.WriteString(lookup(s[i+1 : j]))
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func matchParen(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

func isVarStart(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isVarPart(c byte) bool {
	return isVarStart(c) || (c >= '0' && c <= '9')
}

// runCommand executes cmd via "sh -c" and returns its trimmed stdout. Any
// failure (nonzero exit, missing shell) yields the empty string rather
// than propagating an error, matching the manifest's best-effort
// substitution semantics.
func runCommand(cmd string) string {
	out, err := exec.Command("sh", "-c", cmd).Output()
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\n")
}
