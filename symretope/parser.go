package symretope

import (
	"fmt"
	"strings"
)

// The textual form of a constraint is
//
//	symretope([x1,x2,x3],[1,2,0])
//
// i.e. the variable names followed by the permutation as an index array of
// the same length.

// ParseConstraint reads the textual form and returns the variable names and
// the permutation. The permutation is validated for range and duplicates.
func ParseConstraint(s string) (names []string, perm []int, err error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "symretope(") {
		return nil, nil, fmt.Errorf("expected \"symretope(\", got %q", truncate(s, 20))
	}
	s = s[len("symretope("):]

	names, s, err = parseNameList(s)
	if err != nil {
		return nil, nil, err
	}
	s = skipSep(s)
	perm, s, err = parseIntList(s)
	if err != nil {
		return nil, nil, err
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, ")") {
		return nil, nil, fmt.Errorf("expected ')' to close constraint, got %q", truncate(s, 20))
	}
	if rest := strings.TrimSpace(s[1:]); rest != "" {
		return nil, nil, fmt.Errorf("trailing input after constraint: %q", truncate(rest, 20))
	}
	if len(perm) != len(names) {
		return nil, nil, fmt.Errorf("got %d variables but a permutation of length %d", len(names), len(perm))
	}
	seen := make([]bool, len(perm))
	for i, img := range perm {
		if img < 0 || img >= len(perm) {
			return nil, nil, fmt.Errorf("permutation entry %d out of range: %d", i, img)
		}
		if seen[img] {
			return nil, nil, fmt.Errorf("duplicate image %d in permutation", img)
		}
		seen[img] = true
	}
	return names, perm, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

func skipSep(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, ",") {
		s = strings.TrimSpace(s[1:])
	}
	return s
}

func parseNameList(s string) (names []string, rest string, err error) {
	s = skipSep(s)
	if !strings.HasPrefix(s, "[") {
		return nil, s, fmt.Errorf("expected '[' to start variable array, got %q", truncate(s, 20))
	}
	s = s[1:]
	for {
		s = skipSep(s)
		if strings.HasPrefix(s, "]") {
			return names, s[1:], nil
		}
		end := strings.IndexAny(s, ",]")
		if end < 0 {
			return nil, s, fmt.Errorf("unterminated variable array")
		}
		name := strings.TrimSpace(s[:end])
		if name == "" {
			return nil, s, fmt.Errorf("empty variable name in array")
		}
		names = append(names, name)
		s = s[end:]
	}
}

func parseIntList(s string) (vals []int, rest string, err error) {
	s = skipSep(s)
	if !strings.HasPrefix(s, "[") {
		return nil, s, fmt.Errorf("expected '[' to start permutation array, got %q", truncate(s, 20))
	}
	s = s[1:]
	for {
		s = skipSep(s)
		if strings.HasPrefix(s, "]") {
			return vals, s[1:], nil
		}
		end := strings.IndexAny(s, ",]")
		if end < 0 {
			return nil, s, fmt.Errorf("unterminated permutation array")
		}
		var v int
		if _, err := fmt.Sscanf(strings.TrimSpace(s[:end]), "%d", &v); err != nil {
			return nil, s, fmt.Errorf("could not extract int from %q", truncate(s, 20))
		}
		vals = append(vals, v)
		s = s[end:]
	}
}

// String prints the constraint in its textual form, using the host's
// variable names and the compacted permutation.
func (c *Constraint) String() string {
	if c == nil {
		return "symretope([],[])"
	}
	var sb strings.Builder
	sb.WriteString("symretope([")
	for i, v := range c.vars {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(c.host.VarName(v))
	}
	sb.WriteString("],[")
	for i, img := range c.perm.perm {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", img)
	}
	sb.WriteString("])")
	return sb.String()
}
