// internal/core/extract/jsonrepair.go
package extract

import (
	"encoding/json"
	"strings"
)

// RepairJSON heuristically completes a possibly-truncated JSON string.
// Model output regularly stops mid-object when it hits the output token
// cap; instead of discarding the whole response, unmatched quotes,
// braces and brackets are closed so the leading fields survive.
//
// The function is a no-op on already-valid JSON. It is not a general
// parser: trailing fields past the truncation point may be lost, but
// the returned string parses whenever the input was cut inside a
// string, after a key, or between members.
func RepairJSON(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	if json.Valid([]byte(trimmed)) {
		return s
	}

	if repaired := closeStructures(trimmed); json.Valid([]byte(repaired)) {
		return repaired
	}

	// The cut landed mid-token (e.g. "tru" of a boolean). Back up to the
	// previous member boundary and close from there.
	for i := len(trimmed) - 1; i >= 0; i-- {
		switch trimmed[i] {
		case ',', '{', '[':
			candidate := closeStructures(trimmed[:i+1])
			if json.Valid([]byte(candidate)) {
				return candidate
			}
		}
	}

	return s
}

// closeStructures applies the repair heuristics in order: drop one
// trailing comma, complete a dangling key, close an open string, then
// close unmatched braces and brackets innermost-first.
func closeStructures(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")

	// Ends mid-key, e.g. `..."guestName":` — give the key an empty value.
	if strings.HasSuffix(s, ":") {
		s += `""`
	}

	inString := false
	escaped := false
	lastSignificant := byte(0) // last unquoted structural byte
	var stack []byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
			lastSignificant = c
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		case ',', ':':
			lastSignificant = c
		}
	}

	// A string preceded by '{' or ',' inside an object is a key, not a
	// value, and needs a value before the object can close. This covers
	// both an open string and a cut landing exactly on the key's
	// closing quote.
	danglingKey := len(stack) > 0 && stack[len(stack)-1] == '{' &&
		(lastSignificant == '{' || lastSignificant == ',')
	if inString {
		s += `"`
		if danglingKey {
			s += `: ""`
		}
	} else if danglingKey && strings.HasSuffix(s, `"`) {
		s += `: ""`
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			s += "}"
		} else {
			s += "]"
		}
	}

	return s
}
