package protected

import (
	"reflect"
	"testing"
)

func TestParseHeaderedFileBasic(t *testing.T) {
	content := varsHeader + "\nPATH\nHOME\n"
	s, err := parseHeaderedFile(content, varsHeader)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(s.Items(), []string{"PATH", "HOME"}) {
		t.Fatalf("Items = %v", s.Items())
	}
}

func TestParseHeaderedFileWithComments(t *testing.T) {
	content := "# a leading comment\n" + varsHeader + "\nPATH # keep me\n\nHOME\n"
	s, err := parseHeaderedFile(content, varsHeader)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(s.Items(), []string{"PATH", "HOME"}) {
		t.Fatalf("Items = %v", s.Items())
	}
}

func TestParseHeaderedFileMissingHeader(t *testing.T) {
	if _, err := parseHeaderedFile("PATH\nHOME\n", varsHeader); err == nil {
		t.Fatal("expected error for missing header")
	}
}

func TestFormatHeaderedFileRoundTrip(t *testing.T) {
	s := NewSet([]string{"PATH", "HOME"})
	formatted := formatHeaderedFile(varsHeader, s)
	reparsed, err := parseHeaderedFile(formatted, varsHeader)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(reparsed.Items(), s.Items()) {
		t.Fatalf("round trip mismatch: %v vs %v", reparsed.Items(), s.Items())
	}
}

func TestNewSetDedupPreservesOrder(t *testing.T) {
	s := NewSet([]string{"a", "b", "a", "c", "b"})
	if !reflect.DeepEqual(s.Items(), []string{"a", "b", "c"}) {
		t.Fatalf("Items = %v", s.Items())
	}
}

func TestGuardPathsSeparatesBlocked(t *testing.T) {
	protectedSet := NewSet([]string{"/usr/bin", "/bin"})
	removable, blocked := GuardPaths([]string{"/usr/bin", "/opt/tool", "/bin"}, protectedSet)
	if !reflect.DeepEqual(removable, []string{"/opt/tool"}) {
		t.Fatalf("removable = %v", removable)
	}
	if !reflect.DeepEqual(blocked, []string{"/usr/bin", "/bin"}) {
		t.Fatalf("blocked = %v", blocked)
	}
}

func TestApplyImplicitUnsetExemptsProtected(t *testing.T) {
	protectedVars := NewSet([]string{"PATH", "HOME"})
	toUnset := ApplyImplicitUnset(
		[]string{"PATH", "HOME", "FOO", "BAR"},
		[]string{"FOO"},
		protectedVars,
	)
	if !reflect.DeepEqual(toUnset, []string{"BAR"}) {
		t.Fatalf("toUnset = %v, want [BAR]", toUnset)
	}
}

func TestDefaultVarsIncludesCoreNames(t *testing.T) {
	s := DefaultVars()
	for _, want := range []string{"PATH", "HOME", "SHELL", "TERM", "USER"} {
		if !s.Contains(want) {
			t.Fatalf("DefaultVars missing %q", want)
		}
	}
}

func TestParseProtectedPathsFromTomlInline(t *testing.T) {
	content := "[protected]\npaths = [\"/usr/bin\", \"/bin\"]\n"
	paths, found := parseProtectedPathsFromToml(content)
	if !found {
		t.Fatal("expected found = true")
	}
	if !reflect.DeepEqual(paths, []string{"/usr/bin", "/bin"}) {
		t.Fatalf("paths = %v", paths)
	}
}

func TestParseProtectedPathsFromTomlMultiline(t *testing.T) {
	content := "[protected]\npaths = [\n  \"/usr/bin\",\n  \"/bin\",\n]\n"
	paths, found := parseProtectedPathsFromToml(content)
	if !found {
		t.Fatal("expected found = true")
	}
	if !reflect.DeepEqual(paths, []string{"/usr/bin", "/bin"}) {
		t.Fatalf("paths = %v", paths)
	}
}

func TestRemoveProtectedSectionInline(t *testing.T) {
	content := "[general]\nshell = \"bash\"\n\n[protected]\npaths = [\"/usr/bin\"]\n\n[other]\nx = 1\n"
	out := removeProtectedSection(content)
	if contains(out, "[protected]") {
		t.Fatalf("protected section not removed: %q", out)
	}
	if !contains(out, "[general]") || !contains(out, "[other]") {
		t.Fatalf("unrelated sections dropped: %q", out)
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}
