package locator

import (
	"fmt"
	"slices"
)

// Policy decides what happens to an `engine=` prefix that names no known engine.
type Policy string

const (
	// Strict rejects unknown engines with an *UnknownEngineError.
	Strict Policy = "strict"
	// Fallback compiles the body after the prefix with the css engine.
	Fallback Policy = "fallback"
)

type Options struct {
	UnknownEngine Policy
	// IdentityAttribute is the attribute #id refers to.
	IdentityAttribute string
	// TextAttributes are the attributes searched by the text engine and :contains().
	TextAttributes []string
	// ClassPrefixes are the conventional type name prefixes the class engine ignores.
	ClassPrefixes []string
	// CacheSize bounds the compiled selector cache of a Finder; 0 disables it.
	CacheSize int
}

var DefaultOptions = Options{
	UnknownEngine:     Strict,
	IdentityAttribute: "name",
	TextAttributes:    []string{"text", "label", "title", "value"},
	ClassPrefixes:     []string{"J"},
	CacheSize:         256,
}

// withDefaults fills unset fields from DefaultOptions. CacheSize is taken as is.
func (o Options) withDefaults() (Options, error) {
	switch o.UnknownEngine {
	case "":
		o.UnknownEngine = DefaultOptions.UnknownEngine
	case Strict, Fallback:
	default:
		return o, fmt.Errorf("bad unknown engine policy: %q", o.UnknownEngine)
	}
	if o.IdentityAttribute == "" {
		o.IdentityAttribute = DefaultOptions.IdentityAttribute
	}
	if o.TextAttributes == nil {
		o.TextAttributes = slices.Clone(DefaultOptions.TextAttributes)
	}
	if o.ClassPrefixes == nil {
		o.ClassPrefixes = slices.Clone(DefaultOptions.ClassPrefixes)
	}
	if o.CacheSize < 0 {
		return o, fmt.Errorf("bad cache size: %d", o.CacheSize)
	}
	return o, nil
}
