// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package routes

import (
	"github.com/spf13/viper"
)

// Config contains configurable values for the route table.
type Config struct {
	Path string `help:"path to a YAML route table, the built-in table is used when empty" default:""`
}

// File is the on-disk layout of a route table.
//
//	fallback: default
//	routes:
//	  - pattern: /blog/*
//	    filter: blog
//	    key: "[0-9]+"
//	types:
//	  article: blog
type File struct {
	Fallback string            `mapstructure:"fallback"`
	Routes   []Route           `mapstructure:"routes"`
	Types    map[string]string `mapstructure:"types"`
}

// DefaultFile returns the built-in route table.
func DefaultFile() File {
	const numeric = "[0-9]+"
	return File{
		Fallback: DefaultFilter,
		Routes: []Route{
			{Pattern: "/blog/*", Filter: "blog", Key: numeric},
			{Pattern: "/article/*", Filter: "blog", Key: numeric},
			{Pattern: "/work/*", Filter: "work", Key: numeric},
			{Pattern: "/mind-map/*", Filter: "mind_map", Key: numeric},
		},
		Types: map[string]string{
			"blog":     "blog",
			"article":  "blog",
			"work":     "work",
			"mind_map": "mind_map",
		},
	}
}

// Default returns the compiled built-in route table.
func Default() *Table {
	file := DefaultFile()
	table, err := NewTable(file.Routes, file.Types, file.Fallback)
	if err != nil {
		panic(err)
	}
	return table
}

// Load reads the route table from config.Path, or returns the built-in table
// when no path is configured.
func Load(config Config) (*Table, error) {
	if config.Path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(config.Path)
	if err := v.ReadInConfig(); err != nil {
		return nil, Error.New("unable to read %q: %v", config.Path, err)
	}

	var file File
	if err := v.Unmarshal(&file); err != nil {
		return nil, Error.New("unable to parse %q: %v", config.Path, err)
	}
	if len(file.Routes) == 0 && len(file.Types) == 0 {
		return nil, Error.New("%q defines no routes or types", config.Path)
	}

	return NewTable(file.Routes, file.Types, file.Fallback)
}
