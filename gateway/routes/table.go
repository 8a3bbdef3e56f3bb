// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package routes classifies request paths and resource types into filters.
package routes

import (
	"regexp"
	"sort"
	"strings"

	"github.com/zeebo/errs"
)

// Error is the default error class for route tables.
var Error = errs.Class("routes")

// DefaultFilter is the filter used for resource types without an explicit
// mapping.
const DefaultFilter = "default"

// Route maps a path pattern to a filter.
type Route struct {
	// Pattern is a glob like /blog/*.
	Pattern string `mapstructure:"pattern"`
	// Filter is the name of the filter checked for matching paths.
	Filter string `mapstructure:"filter"`
	// Key optionally restricts the final path segment, for example [0-9]+.
	Key string `mapstructure:"key"`
}

type compiledRoute struct {
	Route
	pattern *regexp.Regexp
	key     *regexp.Regexp
}

// Table is an immutable classification of paths and resource types.
//
// The gate and the maintenance path share a single Table, so a resource
// published as "article" lands in the same filter that /article/{id}
// requests are checked against.
type Table struct {
	routes   []compiledRoute
	types    map[string]string
	fallback string
}

// NewTable compiles routes in order and maps resource types to filters.
// Resource types are case-insensitive. When fallback is empty DefaultFilter
// is used.
func NewTable(routes []Route, types map[string]string, fallback string) (*Table, error) {
	if fallback == "" {
		fallback = DefaultFilter
	}

	table := &Table{
		types:    make(map[string]string, len(types)),
		fallback: fallback,
	}

	var group errs.Group
	for _, route := range routes {
		if route.Filter == "" {
			group.Add(Error.New("route %q has no filter", route.Pattern))
			continue
		}
		pattern, err := compileGlob(route.Pattern)
		if err != nil {
			group.Add(err)
			continue
		}
		key, err := compileKey(route.Key)
		if err != nil {
			group.Add(err)
			continue
		}

		table.routes = append(table.routes, compiledRoute{
			Route:   route,
			pattern: pattern,
			key:     key,
		})
	}

	for resourceType, filter := range types {
		if filter == "" {
			group.Add(Error.New("resource type %q has no filter", resourceType))
			continue
		}
		table.types[strings.ToLower(resourceType)] = filter
	}

	if err := group.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// Classify returns the filter and resource key for path.
// ok is false when the path is not subject to any filter.
// The key is the final path segment and may be empty.
func (table *Table) Classify(path string) (filter, key string, ok bool) {
	key = path[strings.LastIndexByte(path, '/')+1:]
	for _, route := range table.routes {
		if !route.pattern.MatchString(path) {
			continue
		}
		if route.key != nil && !route.key.MatchString(key) {
			continue
		}
		return route.Filter, key, true
	}
	return "", "", false
}

// FilterFor returns the filter that holds resources of the given type.
func (table *Table) FilterFor(resourceType string) string {
	if filter, ok := table.types[strings.ToLower(resourceType)]; ok {
		return filter
	}
	return table.fallback
}

// Fallback returns the filter used for unknown resource types.
func (table *Table) Fallback() string { return table.fallback }

// Routes returns the configured routes in match order.
func (table *Table) Routes() []Route {
	routes := make([]Route, len(table.routes))
	for i, route := range table.routes {
		routes[i] = route.Route
	}
	return routes
}

// Filters returns the sorted names of every filter the table refers to.
func (table *Table) Filters() []string {
	seen := map[string]struct{}{table.fallback: {}}
	for _, route := range table.routes {
		seen[route.Filter] = struct{}{}
	}
	for _, filter := range table.types {
		seen[filter] = struct{}{}
	}

	filters := make([]string, 0, len(seen))
	for filter := range seen {
		filters = append(filters, filter)
	}
	sort.Strings(filters)
	return filters
}
