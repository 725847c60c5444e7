// Package manifest parses and serializes the whifile manifest: a
// declarative description of how to mutate PATH and the environment on
// venv activation. It understands three historical shapes and normalizes
// all of them to one in-memory model.
package manifest

import (
	"regexp"
	"strings"

	"whi/internal/whierr"
)

var envNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name matches the manifest's env-name grammar.
func ValidName(name string) bool { return envNameRe.MatchString(name) }

// PathSections holds the PATH-affecting directives. Replace is mutually
// exclusive with Prepend/Append.
type PathSections struct {
	Replace []string
	Prepend []string
	Append  []string
}

// EnvOpKind tags an EnvOperation.
type EnvOpKind int

const (
	EnvSet EnvOpKind = iota
	EnvUnset
	EnvReplace
)

// EnvPair is a single NAME/VALUE pair, used both for Set and for the
// pair list carried by a Replace operation.
type EnvPair struct {
	Name  string
	Value string
}

// EnvOperation is one entry in the ordered list of environment directives.
// Order is preserved because later operations observe the effects of
// earlier ones (see venv package).
type EnvOperation struct {
	Kind    EnvOpKind
	Name    string    // Set, Unset
	Value   string    // Set
	Replace []EnvPair // Replace
}

// Manifest is the fully parsed, normalized whifile contents.
type Manifest struct {
	Path PathSections
	Env  []EnvOperation
	// Upgraded is true when the source was detected as a legacy (v0/v1)
	// shape; callers may choose to atomically rewrite the file in the
	// current form using Render.
	Upgraded bool
}

const (
	hdrPathReplace = "!path.replace"
	hdrPathPrepend = "!path.prepend"
	hdrPathAppend  = "!path.append"
	hdrEnvSet      = "!env.set"
	hdrEnvUnset    = "!env.unset"
	hdrEnvReplace  = "!env.replace"
)

// Parse normalizes any of the three historical manifest shapes into a
// Manifest. v2 (current, "!"-sectioned), v1 (legacy "PATH!"/"ENV!"
// headers), and v0 (a single colon-separated line, no headers) are all
// accepted.
func Parse(content string) (Manifest, error) {
	lines := strings.Split(content, "\n")
	sig := detectShape(lines)
	switch sig {
	case shapeV0:
		return parseV0(content)
	case shapeV1:
		return parseV1(lines)
	default:
		return parseV2(lines)
	}
}

type shape int

const (
	shapeV2 shape = iota
	shapeV1
	shapeV0
)

func detectShape(lines []string) shape {
	sawV2Header := false
	sawV1Header := false
	sawContent := false
	for _, raw := range lines {
		line := stripComment(strings.TrimSpace(raw))
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "!"):
			sawV2Header = true
		case line == "PATH!" || line == "ENV!":
			sawV1Header = true
		default:
			sawContent = true
		}
	}
	if sawV2Header {
		return shapeV2
	}
	if sawV1Header {
		return shapeV1
	}
	_ = sawContent
	return shapeV0
}

func stripComment(line string) string {
	// A '#' is a comment start only when preceded by whitespace or at the
	// very start of the (already trimmed) line, matching the manifest's
	// inline-comment rule.
	if strings.HasPrefix(line, "#") {
		return ""
	}
	idx := strings.Index(line, " #")
	if idx < 0 {
		idx = strings.Index(line, "\t#")
	}
	if idx >= 0 {
		return strings.TrimRight(line[:idx], " \t")
	}
	return line
}

func parseV0(content string) (Manifest, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Manifest{}, whierr.New("manifest.Parse", whierr.ParseFailure, nil)
	}
	dirs := splitNonEmpty(trimmed, ":")
	return Manifest{Path: PathSections{Replace: dirs}, Upgraded: true}, nil
}

func parseV1(lines []string) (Manifest, error) {
	m := Manifest{Upgraded: true}
	section := ""
	for _, raw := range lines {
		line := stripComment(strings.TrimSpace(raw))
		if line == "" {
			continue
		}
		if line == "PATH!" {
			section = "path"
			continue
		}
		if line == "ENV!" {
			section = "env"
			continue
		}
		switch section {
		case "path":
			m.Path.Replace = append(m.Path.Replace, line)
		case "env":
			name, value, err := parseEnvLine(line)
			if err != nil {
				return Manifest{}, err
			}
			m.Env = append(m.Env, EnvOperation{Kind: EnvSet, Name: name, Value: value})
		}
	}
	if len(m.Path.Replace) == 0 {
		return Manifest{}, whierr.Newf("manifest.Parse", whierr.ParseFailure, "missing PATH directive")
	}
	return m, nil
}

func parseV2(lines []string) (Manifest, error) {
	var m Manifest
	header := ""
	for _, raw := range lines {
		line := stripComment(strings.TrimSpace(raw))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "!") {
			header = line
			if err := validateHeader(header); err != nil {
				return Manifest{}, err
			}
			continue
		}
		switch header {
		case hdrPathReplace:
			m.Path.Replace = append(m.Path.Replace, line)
		case hdrPathPrepend:
			m.Path.Prepend = append(m.Path.Prepend, line)
		case hdrPathAppend:
			m.Path.Append = append(m.Path.Append, line)
		case hdrEnvSet:
			name, value, err := parseEnvLine(line)
			if err != nil {
				return Manifest{}, err
			}
			m.Env = append(m.Env, EnvOperation{Kind: EnvSet, Name: name, Value: value})
		case hdrEnvUnset:
			if !ValidName(line) {
				return Manifest{}, whierr.Newf("manifest.Parse", whierr.InvalidName, "invalid env name %q", line)
			}
			m.Env = append(m.Env, EnvOperation{Kind: EnvUnset, Name: line})
		case hdrEnvReplace:
			name, value, err := parseEnvLine(line)
			if err != nil {
				return Manifest{}, err
			}
			m.Env = appendReplacePair(m.Env, name, value)
		default:
			return Manifest{}, whierr.Newf("manifest.Parse", whierr.ParseFailure, "content line before any section header: %q", line)
		}
	}

	if err := validateSections(m); err != nil {
		return Manifest{}, err
	}
	if len(m.Path.Replace) == 0 && len(m.Path.Prepend) == 0 && len(m.Path.Append) == 0 {
		return Manifest{}, whierr.Newf("manifest.Parse", whierr.ParseFailure, "missing PATH directive")
	}
	return m, nil
}

// appendReplacePair folds consecutive !env.replace lines into a single
// trailing Replace operation, since the manifest format expresses the
// whole pair list as a contiguous block of NAME VALUE lines under one
// header.
func appendReplacePair(ops []EnvOperation, name, value string) []EnvOperation {
	if n := len(ops); n > 0 && ops[n-1].Kind == EnvReplace {
		ops[n-1].Replace = append(ops[n-1].Replace, EnvPair{Name: name, Value: value})
		return ops
	}
	return append(ops, EnvOperation{Kind: EnvReplace, Replace: []EnvPair{{Name: name, Value: value}}})
}

func validateHeader(h string) error {
	switch h {
	case hdrPathReplace, hdrPathPrepend, hdrPathAppend, hdrEnvSet, hdrEnvUnset, hdrEnvReplace:
		return nil
	default:
		return whierr.Newf("manifest.Parse", whierr.ParseFailure, "unknown section header %q", h)
	}
}

func validateSections(m Manifest) error {
	if len(m.Path.Replace) > 0 && (len(m.Path.Prepend) > 0 || len(m.Path.Append) > 0) {
		return whierr.Newf("manifest.Parse", whierr.ParseFailure, "!path.replace cannot combine with !path.prepend/!path.append")
	}
	hasReplace, hasSetOrUnset := false, false
	for _, op := range m.Env {
		switch op.Kind {
		case EnvReplace:
			hasReplace = true
		case EnvSet, EnvUnset:
			hasSetOrUnset = true
		}
	}
	if hasReplace && hasSetOrUnset {
		return whierr.Newf("manifest.Parse", whierr.ParseFailure, "!env.replace cannot combine with !env.set/!env.unset")
	}
	return nil
}

func parseEnvLine(line string) (name, value string, err error) {
	fields := strings.SplitN(line, " ", 2)
	name = fields[0]
	if tabIdx := strings.IndexAny(name, "\t"); tabIdx >= 0 {
		// Allow a bare tab as the delimiter too.
		parts := strings.SplitN(line, "\t", 2)
		name = parts[0]
		if len(parts) == 2 {
			value = strings.TrimSpace(parts[1])
		}
	} else if len(fields) == 2 {
		value = strings.TrimLeft(fields[1], " \t")
	}
	if !ValidName(name) {
		return "", "", whierr.Newf("manifest.Parse", whierr.InvalidName, "invalid env name %q", name)
	}
	return name, value, nil
}

func splitNonEmpty(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ApplyPathSections computes the effective PATH entries from base (the
// current PATH entries) and sections: if Replace is set, the output is
// Replace deduplicated; otherwise it is Prepend++base++Append,
// deduplicated, preserving first occurrence. An empty result is an error.
func ApplyPathSections(base []string, sections PathSections) ([]string, error) {
	var combined []string
	if len(sections.Replace) > 0 {
		combined = sections.Replace
	} else {
		combined = append(combined, sections.Prepend...)
		combined = append(combined, base...)
		combined = append(combined, sections.Append...)
	}
	seen := make(map[string]struct{}, len(combined))
	out := make([]string, 0, len(combined))
	for _, e := range combined {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, whierr.New("manifest.ApplyPathSections", whierr.EmptyResult, nil)
	}
	return out, nil
}

// Render serializes m in the current (v2) shape, used to atomically
// rewrite a manifest detected as legacy.
func Render(m Manifest) string {
	var b strings.Builder
	writeSection := func(header string, lines []string) {
		if len(lines) == 0 {
			return
		}
		b.WriteString(header)
		b.WriteByte('\n')
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	writeSection(hdrPathReplace, m.Path.Replace)
	writeSection(hdrPathPrepend, m.Path.Prepend)
	writeSection(hdrPathAppend, m.Path.Append)

	for _, op := range m.Env {
		switch op.Kind {
		case EnvSet:
			b.WriteString(hdrEnvSet)
			b.WriteByte('\n')
			b.WriteString(op.Name)
			b.WriteByte(' ')
			b.WriteString(op.Value)
			b.WriteByte('\n')
		case EnvUnset:
			b.WriteString(hdrEnvUnset)
			b.WriteByte('\n')
			b.WriteString(op.Name)
			b.WriteByte('\n')
		case EnvReplace:
			b.WriteString(hdrEnvReplace)
			b.WriteByte('\n')
			for _, pair := range op.Replace {
				b.WriteString(pair.Name)
				b.WriteByte(' ')
				b.WriteString(pair.Value)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

// DefaultTemplate produces a heavily commented starter whifile, seeded
// with the current protected paths for reference.
func DefaultTemplate(protectedPaths []string) string {
	var b strings.Builder
	b.WriteString("# whifile - declarative PATH/env manifest for `whi source`\n")
	b.WriteString("#\n")
	b.WriteString("# PATH directives (!path.replace cannot be combined with the others):\n")
	b.WriteString("#   !path.replace   - PATH becomes exactly these directories\n")
	b.WriteString("#   !path.prepend   - these directories go before the current PATH\n")
	b.WriteString("#   !path.append    - these directories go after the current PATH\n")
	b.WriteString("#\n")
	b.WriteString("!path.prepend\n")
	b.WriteString("./bin\n")
	b.WriteString("\n# Reference: paths currently protected from removal:\n")
	for _, p := range protectedPaths {
		b.WriteString("# ")
		b.WriteString(p)
		b.WriteByte('\n')
	}
	b.WriteString("\n# Environment directives are optional and order-sensitive; each header\n")
	b.WriteString("# stands on its own line, followed by one entry per line:\n")
	b.WriteString("#   !env.set       - NAME VALUE lines\n")
	b.WriteString("#   !env.unset     - NAME lines\n")
	b.WriteString("#   !env.replace   - NAME VALUE lines (unsets every non-protected var not listed)\n")
	return b.String()
}
