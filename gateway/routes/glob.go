// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package routes

import (
	"regexp"
	"strings"
)

// compileGlob converts a path pattern into an anchored regular expression.
//
// Literal segments match exactly, "*" matches one non-empty segment and "**"
// as the last segment matches the rest of the path, including nothing.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, Error.New("pattern %q must start with /", pattern)
	}

	segments := strings.Split(pattern[1:], "/")

	var expr strings.Builder
	expr.WriteString("^")
	for i, segment := range segments {
		switch segment {
		case "*":
			expr.WriteString("/[^/]+")
		case "**":
			if i != len(segments)-1 {
				return nil, Error.New("pattern %q: ** is only allowed as the last segment", pattern)
			}
			expr.WriteString("(?:/.*)?")
		default:
			if strings.Contains(segment, "*") {
				return nil, Error.New("pattern %q: wildcards must be whole segments", pattern)
			}
			expr.WriteString("/" + regexp.QuoteMeta(segment))
		}
	}
	expr.WriteString("$")

	return regexp.Compile(expr.String())
}

// compileKey compiles an optional key constraint that must match the whole key.
func compileKey(key string) (*regexp.Regexp, error) {
	if key == "" {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + key + ")$")
	if err != nil {
		return nil, Error.New("invalid key expression %q: %v", key, err)
	}
	return re, nil
}
