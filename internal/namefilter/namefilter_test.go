package namefilter

import "testing"

func TestSanitizeProfileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "work", want: "work"},
		{name: "slash", input: "team/project", want: "team_project"},
		{name: "traversal", input: "../../etc/passwd", want: ".._.._etc_passwd"},
		{name: "bare traversal", input: "..", want: "unknown"},
		{name: "empty", input: "", want: "unknown"},
		{name: "whitespace", input: "  ", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeProfileName(tt.input); got != tt.want {
				t.Fatalf("SanitizeProfileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
