// Package valueparser tokenizes the raw string found in one spreadsheet
// cell into primitive scalars, refs, and inline collection literals. It
// sits below the binder (internal/binder), which is the layer that knows
// which Go type a given cell should become; this package only knows how
// to turn text into the handful of wire-shapes the format supports.
package valueparser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BadValueError reports a cell string that does not match the syntax its
// caller asked to parse it as.
type BadValueError struct {
	Raw  string
	Want string
}

func (e *BadValueError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s", e.Raw, e.Want)
}

// ParseBool parses the small set of boolean spellings the sheets use.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n", "":
		return false, nil
	}
	return false, &BadValueError{Raw: raw, Want: "bool"}
}

// ParseInt parses a signed integer cell.
func ParseInt(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &BadValueError{Raw: raw, Want: "int"}
	}
	return v, nil
}

// ParseFloat parses a floating point cell.
func ParseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &BadValueError{Raw: raw, Want: "float"}
	}
	return v, nil
}

// ParseDuration parses a cell as a duration, accepting both Go duration
// syntax ("1h30m") and a bare number of seconds ("90").
func ParseDuration(raw string) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if d, err := time.ParseDuration(trimmed); err == nil {
		return d, nil
	}
	if secs, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return 0, &BadValueError{Raw: raw, Want: "duration"}
}

// ParseInstant parses a cell as an absolute timestamp: RFC3339 first,
// falling back to a bare unix-epoch-seconds integer.
func ParseInstant(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t, nil
	}
	if secs, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, &BadValueError{Raw: raw, Want: "instant"}
}

// ParseEnum matches raw, case-sensitively, against the set of allowed
// enum member names.
func ParseEnum(raw string, allowed []string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	for _, a := range allowed {
		if a == trimmed {
			return a, nil
		}
	}
	return "", &BadValueError{Raw: raw, Want: "enum(" + strings.Join(allowed, "|") + ")"}
}

// Ref is a strongly-typed reference literal parsed from a cell: either
// "ItemType:Key" or a bare "Key" whose item type is inferred by the
// caller from the declared target type of the referencing member.
type Ref struct {
	ItemType string
	Key      string
}

// ParseRef parses a MetaRef cell. An empty cell is not a valid ref; the
// caller decides whether an empty ref member means "no reference".
func ParseRef(raw string) (Ref, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Ref{}, &BadValueError{Raw: raw, Want: "ref"}
	}
	if idx := strings.IndexByte(trimmed, ':'); idx >= 0 {
		return Ref{ItemType: trimmed[:idx], Key: trimmed[idx+1:]}, nil
	}
	return Ref{Key: trimmed}, nil
}

// ParseElements splits an inline collection cell into its element
// literals, without interpreting the elements themselves. Accepted
// syntaxes: "[a, b, c]" and the bare "a, b, c" form. An empty string
// yields a nil (zero-length) slice, representing an empty collection —
// the distinction between "empty" and "absent" is made by the caller.
func ParseElements(raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		if !strings.HasSuffix(trimmed, "]") {
			return nil, &BadValueError{Raw: raw, Want: "inline list (unterminated '[')"}
		}
		trimmed = trimmed[1 : len(trimmed)-1]
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == "" {
			return []string{}, nil
		}
	}
	parts := splitTopLevel(trimmed, ',')
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(unquote(p))
	}
	return out, nil
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// '[...]' or '"..."' spans, mirroring the bracket/quote awareness the
// header-path lexer (internal/pathdsl) needs for tag values.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
			// inside a quoted literal, nothing else is significant
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
