// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/kinship/services/kinship/graph"
)

// ParsePattern parses the text form of a pattern.
//
// Description:
//
//	The text form is an optional MATCH keyword, a parenthesized start
//	group, one or more hop arrows, and an optional parenthesized terminal
//	group:
//
//	  MATCH (Person {name: "Bob"}) -[FRIEND]-> -[FRIEND]-> (Person)
//
//	A group is "(Label)" or "(Label {key: "value", ...})". Arrows are
//	-[TYPE]-> (outgoing), <-[TYPE]- (incoming) or -[TYPE]- (both).
//
// Outputs:
//
//	*Pattern - The parsed, validated pattern.
//	error - An error wrapping ErrMalformedPattern on any syntax problem.
func ParsePattern(input string) (*Pattern, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedPattern)
	}
	if rest, ok := cutKeyword(s, "MATCH"); ok {
		s = rest
	}

	start, s, err := parseGroup(s)
	if err != nil {
		return nil, err
	}

	pattern := &Pattern{Start: start}
	for {
		s = strings.TrimSpace(s)
		if s == "" {
			break
		}
		if strings.HasPrefix(s, "(") {
			where, rest, err := parseGroup(s)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(rest) != "" {
				return nil, fmt.Errorf("%w: trailing input after terminal group: %q", ErrMalformedPattern, rest)
			}
			pattern.Where = &where
			break
		}

		hop, rest, err := parseHop(s)
		if err != nil {
			return nil, err
		}
		pattern.Hops = append(pattern.Hops, hop)
		s = rest
	}

	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	return pattern, nil
}

// cutKeyword strips a leading keyword (case-insensitive) followed by
// whitespace or a group opener.
func cutKeyword(s, keyword string) (string, bool) {
	if len(s) < len(keyword) || !strings.EqualFold(s[:len(keyword)], keyword) {
		return s, false
	}
	rest := s[len(keyword):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '(' {
		return s, false
	}
	return strings.TrimSpace(rest), true
}

// parseGroup parses "(Label)" or "(Label {k: "v", ...})" and returns the
// filter plus the remaining input.
func parseGroup(s string) (Filter, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") {
		return Filter{}, "", fmt.Errorf("%w: expected '(' at %q", ErrMalformedPattern, truncateFor(s))
	}
	end := indexOutsideQuotes(s, ')')
	if end == -1 {
		return Filter{}, "", fmt.Errorf("%w: missing ')'", ErrMalformedPattern)
	}

	body := strings.TrimSpace(s[1:end])
	rest := s[end+1:]

	label := body
	props := map[string]string{}
	if brace := indexOutsideQuotes(body, '{'); brace != -1 {
		if !strings.HasSuffix(body, "}") {
			return Filter{}, "", fmt.Errorf("%w: missing '}' in group %q", ErrMalformedPattern, body)
		}
		label = strings.TrimSpace(body[:brace])
		var err error
		props, err = parseProps(body[brace+1 : len(body)-1])
		if err != nil {
			return Filter{}, "", err
		}
	}
	if label == "" {
		return Filter{}, "", fmt.Errorf("%w: group is missing a label", ErrMalformedPattern)
	}
	return Filter{Label: label, Props: props}, rest, nil
}

// parseProps parses `key: "value", key2: "value2"`. Quotes around values
// are optional and stripped when present; quoted values may contain commas,
// colons and brackets.
func parseProps(s string) (map[string]string, error) {
	props := make(map[string]string)
	for _, pair := range splitOutsideQuotes(s, ',') {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("%w: invalid property %q", ErrMalformedPattern, pair)
		}
		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		if strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}
		if key == "" {
			return nil, fmt.Errorf("%w: empty property key in %q", ErrMalformedPattern, pair)
		}
		props[key] = value
	}
	return props, nil
}

// parseHop parses one arrow segment and returns the hop plus the remaining
// input.
func parseHop(s string) (Hop, string, error) {
	s = strings.TrimSpace(s)

	incoming := strings.HasPrefix(s, "<-")
	if incoming {
		s = s[2:]
	} else if strings.HasPrefix(s, "-") {
		s = s[1:]
	} else {
		return Hop{}, "", fmt.Errorf("%w: expected hop arrow at %q", ErrMalformedPattern, truncateFor(s))
	}

	if !strings.HasPrefix(s, "[") {
		return Hop{}, "", fmt.Errorf("%w: expected '[' in hop at %q", ErrMalformedPattern, truncateFor(s))
	}
	end := strings.Index(s, "]")
	if end == -1 {
		return Hop{}, "", fmt.Errorf("%w: missing ']' in hop", ErrMalformedPattern)
	}
	edgeType := strings.TrimSpace(strings.TrimPrefix(s[1:end], ":"))
	if edgeType == "" {
		return Hop{}, "", fmt.Errorf("%w: hop is missing a relationship type", ErrMalformedPattern)
	}
	s = s[end+1:]

	if !strings.HasPrefix(s, "-") {
		return Hop{}, "", fmt.Errorf("%w: expected '-' after ']' at %q", ErrMalformedPattern, truncateFor(s))
	}
	s = s[1:]

	dir := graph.DirectionBoth
	outgoing := strings.HasPrefix(s, ">")
	if outgoing {
		s = s[1:]
	}
	switch {
	case incoming && outgoing:
		return Hop{}, "", fmt.Errorf("%w: hop cannot be both <- and ->", ErrMalformedPattern)
	case incoming:
		dir = graph.DirectionIncoming
	case outgoing:
		dir = graph.DirectionOutgoing
	}

	return Hop{Type: edgeType, Direction: dir}, s, nil
}

// indexOutsideQuotes returns the index of the first occurrence of b that is
// not inside a double-quoted span, or -1.
func indexOutsideQuotes(s string, b byte) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			inQuote = !inQuote
		case s[i] == b && !inQuote:
			return i
		}
	}
	return -1
}

// splitOutsideQuotes splits s on sep, ignoring separators inside
// double-quoted spans.
func splitOutsideQuotes(s string, sep byte) []string {
	var parts []string
	for {
		i := indexOutsideQuotes(s, sep)
		if i == -1 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i+1:]
	}
}

// truncateFor trims long input for error messages.
func truncateFor(s string) string {
	const max = 24
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
