package routing

import (
	"regexp"
	"strings"
)

var (
	literalSegmentPattern = regexp.MustCompile(`^[A-Za-z0-9._~!$&'()+,;=@%-]+$`)
	paramNamePattern      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// SegmentKind classifies one segment of a compiled pattern.
type SegmentKind int

const (
	// SegmentCatchAll matches every remaining path segment (at least one).
	SegmentCatchAll SegmentKind = iota
	// SegmentParam matches exactly one arbitrary segment.
	SegmentParam
	// SegmentLiteral matches one segment byte for byte.
	SegmentLiteral
)

// Segment is a single compiled element of a pattern.
type Segment struct {
	Kind  SegmentKind
	Value string // literal text, or parameter name
}

// Pattern is a compiled route pattern such as /feed/:id or /static/*path.
type Pattern struct {
	raw       string
	canonical string
	segments  []Segment
}

// CompilePattern parses and validates a route pattern.
func CompilePattern(raw string) (Pattern, error) {
	pattern := raw
	if strings.TrimSpace(pattern) == "" {
		return Pattern{}, ErrInvalidPattern{Pattern: raw, Reason: "pattern is empty"}
	}
	if strings.TrimSpace(pattern) != pattern {
		return Pattern{}, ErrInvalidPattern{Pattern: raw, Reason: "pattern has leading or trailing whitespace"}
	}
	if !strings.HasPrefix(pattern, "/") {
		return Pattern{}, ErrInvalidPattern{Pattern: raw, Reason: "pattern must start with '/'"}
	}

	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if pattern == "/" {
		return Pattern{raw: raw, canonical: "/"}, nil
	}

	parts := strings.Split(pattern[1:], "/")
	segments := make([]Segment, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for i, part := range parts {
		if part == "" {
			return Pattern{}, ErrInvalidPattern{Pattern: raw, Reason: "pattern contains an empty segment"}
		}

		switch part[0] {
		case ':', '*':
			name := part[1:]
			if !paramNamePattern.MatchString(name) {
				return Pattern{}, ErrInvalidPattern{Pattern: raw, Reason: "invalid parameter name '" + name + "'"}
			}
			if _, dup := seen[name]; dup {
				return Pattern{}, ErrInvalidPattern{Pattern: raw, Reason: "parameter '" + name + "' declared more than once"}
			}
			seen[name] = struct{}{}

			kind := SegmentParam
			if part[0] == '*' {
				if i != len(parts)-1 {
					return Pattern{}, ErrInvalidPattern{Pattern: raw, Reason: "catch-all '*" + name + "' must be the last segment"}
				}
				kind = SegmentCatchAll
			}
			segments = append(segments, Segment{Kind: kind, Value: name})
		default:
			if !literalSegmentPattern.MatchString(part) {
				return Pattern{}, ErrInvalidPattern{Pattern: raw, Reason: "invalid characters in segment '" + part + "'"}
			}
			segments = append(segments, Segment{Kind: SegmentLiteral, Value: part})
		}
	}

	return Pattern{raw: raw, canonical: pattern, segments: segments}, nil
}

// MustCompilePattern panics if the pattern cannot be compiled.
func MustCompilePattern(raw string) Pattern {
	p, err := CompilePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the normalized pattern.
func (p Pattern) String() string {
	return p.canonical
}

// Raw returns the pattern as it was declared.
func (p Pattern) Raw() string {
	return p.raw
}

// Segments returns a copy of the compiled segments.
func (p Pattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// IsLiteral reports whether the pattern has no parameter or catch-all segments.
func (p Pattern) IsLiteral() bool {
	for _, seg := range p.segments {
		if seg.Kind != SegmentLiteral {
			return false
		}
	}
	return true
}

// compareSpecificity returns a negative number when a is more specific than b,
// positive when b is more specific, and zero when both have the same shape.
// Literal outranks parameter outranks catch-all at the first differing position;
// with identical ranks the longer pattern wins.
func compareSpecificity(a, b Pattern) int {
	n := min(len(a.segments), len(b.segments))
	for i := 0; i < n; i++ {
		ka, kb := a.segments[i].Kind, b.segments[i].Kind
		if ka != kb {
			return int(kb) - int(ka)
		}
	}
	return len(b.segments) - len(a.segments)
}

// match reports whether path segments satisfy the pattern, filling params.
func (p Pattern) match(parts []string) (map[string]string, bool) {
	var params map[string]string
	for i, seg := range p.segments {
		if seg.Kind == SegmentCatchAll {
			if i >= len(parts) {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, 1)
			}
			params[seg.Value] = strings.Join(parts[i:], "/")
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		switch seg.Kind {
		case SegmentLiteral:
			if parts[i] != seg.Value {
				return nil, false
			}
		case SegmentParam:
			if params == nil {
				params = make(map[string]string, len(p.segments))
			}
			params[seg.Value] = parts[i]
		}
	}
	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}
