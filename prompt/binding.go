/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package prompt

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
)

// binding is a value that will be substituted for a placeholder at Render.
type binding interface {
	value() (string, error)
}

// unbound is the initial state of every placeholder.
type unbound struct {
	name string
}

func (u *unbound) value() (string, error) {
	return "", fmt.Errorf("unbound placeholder: %s", u.name)
}

type literalBinding struct {
	val string
}

func (l *literalBinding) value() (string, error) {
	return l.val, nil
}

type xmlBinding struct {
	data any
}

func (x *xmlBinding) value() (string, error) {
	b, err := xml.MarshalIndent(x.data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling XML binding: %w", err)
	}
	return string(b), nil
}

type jsonBinding struct {
	data any
}

func (j *jsonBinding) value() (string, error) {
	b, err := json.MarshalIndent(j.data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON binding: %w", err)
	}
	return string(b), nil
}

// unboundPlaceholder checks that name exists in the template and has not
// been bound yet.
func unboundPlaceholder(bindings map[string]binding, name string) error {
	b, ok := bindings[name]
	if !ok {
		return fmt.Errorf("placeholder %q not found in template", name)
	}
	if _, isUnbound := b.(*unbound); !isUnbound {
		return fmt.Errorf("placeholder %q already bound", name)
	}
	return nil
}
