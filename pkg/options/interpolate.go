// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package options

import "strings"

const maxInterpolationDepth = 32

// Interpolate replaces ${key} placeholders in s using sources in order; the
// first source holding a key wins. ${key:-default} falls back to default
// when no source holds key. Unresolved placeholders are left untouched, so
// interpolating an already resolved string is a no-op.
func Interpolate(s string, sources ...map[string]string) string {
	return interpolate(s, sources, 0)
}

func interpolate(s string, sources []map[string]string, depth int) string {
	if depth > maxInterpolationDepth || !strings.Contains(s, "${") {
		return s
	}

	var b strings.Builder
	rest := s
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := closingBrace(rest, start+2)
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])

		expr := rest[start+2 : end]
		key, def, hasDef := strings.Cut(expr, ":-")
		if v, ok := lookup(key, sources); ok {
			b.WriteString(interpolate(v, sources, depth+1))
		} else if hasDef {
			b.WriteString(interpolate(def, sources, depth+1))
		} else {
			b.WriteString(rest[start : end+1])
		}
		rest = rest[end+1:]
	}
	return b.String()
}

// closingBrace finds the brace that closes a placeholder opened before from,
// honoring nested placeholders in defaults.
func closingBrace(s string, from int) int {
	depth := 0
	for i := from; i < len(s); i++ {
		switch {
		case s[i] == '$' && i+1 < len(s) && s[i+1] == '{':
			depth++
			i++
		case s[i] == '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func lookup(key string, sources []map[string]string) (string, bool) {
	for _, src := range sources {
		if v, ok := src[key]; ok {
			return v, true
		}
	}
	return "", false
}
