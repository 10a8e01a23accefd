/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package prompt provides an immutable template type for building model
// prompts. Templates contain {{name}} placeholders that must all be bound
// before Render succeeds, which catches missing or misspelled substitutions
// at construction time instead of shipping half-filled prompts to a model.
package prompt

import (
	"fmt"
	"maps"
)

// literal only accepts string literals, keeping template text and bound
// developer-supplied values out of reach of runtime user input.
type literal = string

// Template is a prompt template with named placeholders. Bind operations
// return a new Template; the receiver is never mutated, so package-level
// templates can be shared across goroutines.
type Template struct {
	text     string
	bindings map[string]binding
}

// New parses a template literal and records its placeholders.
func New(text literal) (*Template, error) {
	bindings := make(map[string]binding)

	// Walking with an identity resolver validates placeholder syntax and
	// collects the placeholder set in one pass.
	parsed, err := walk(text, func(name string) (string, error) {
		if _, ok := bindings[name]; !ok {
			bindings[name] = &unbound{name: name}
		}
		return fmt.Sprintf("{{%s}}", name), nil
	})
	if err != nil {
		return nil, err
	}

	return &Template{text: parsed, bindings: bindings}, nil
}

// Must is New for package variables; it panics on a malformed template.
func Must(text literal) *Template {
	t, err := New(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Placeholders returns the set of placeholder names in the template.
func (t *Template) Placeholders() map[string]struct{} {
	names := make(map[string]struct{}, len(t.bindings))
	for name := range t.bindings {
		names[name] = struct{}{}
	}
	return names
}

// Literal binds a developer-supplied string to a placeholder.
func (t *Template) Literal(name string, value literal) (*Template, error) {
	return t.bind(name, &literalBinding{val: value})
}

// Text binds an arbitrary runtime string to a placeholder. Use this for
// scenario and role content loaded from the catalog.
func (t *Template) Text(name, value string) (*Template, error) {
	return t.bind(name, &literalBinding{val: value})
}

// XML binds structured data to a placeholder, marshaled as indented XML.
// Wrapping untrusted model output in an XML element keeps it clearly
// delimited inside the rendered prompt.
func (t *Template) XML(name string, data any) (*Template, error) {
	return t.bind(name, &xmlBinding{data: data})
}

// JSON binds structured data to a placeholder, marshaled as indented JSON.
func (t *Template) JSON(name string, data any) (*Template, error) {
	return t.bind(name, &jsonBinding{data: data})
}

func (t *Template) bind(name string, b binding) (*Template, error) {
	if err := unboundPlaceholder(t.bindings, name); err != nil {
		return nil, err
	}
	next := &Template{
		text:     t.text,
		bindings: maps.Clone(t.bindings),
	}
	next.bindings[name] = b
	return next, nil
}

// Render produces the final prompt text, failing if any placeholder
// remains unbound.
func (t *Template) Render() (string, error) {
	values := make(map[string]string, len(t.bindings))
	for name, b := range t.bindings {
		val, err := b.value()
		if err != nil {
			return "", err
		}
		values[name] = val
	}

	return walk(t.text, func(name string) (string, error) {
		if val, ok := values[name]; ok {
			return val, nil
		}
		// Unreachable: New and Render tokenize identically.
		return "", fmt.Errorf("internal error: placeholder %q missing from values", name)
	})
}
