/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package catalog defines the scenarios and roles an experiment draws its
// trials from, along with the default set embedded in the binary. Catalogs
// are validated at load time so a bad definition fails before any model
// call is dispatched.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Option is one of the lettered choices a scenario offers.
type Option struct {
	Letter string `yaml:"letter" json:"letter"`
	Text   string `yaml:"text" json:"text"`
}

// Scenario is a decision problem presented to a model. The description
// carries the full situation; the options are the closed set of answers
// a response is expected to pick from.
type Scenario struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Domain      string   `yaml:"domain" json:"domain"`
	Description string   `yaml:"description" json:"description"`
	Options     []Option `yaml:"options" json:"options"`
}

// Role is a persona framing prepended to every scenario prompt. The
// "neutral" role carries no persona and serves as the comparison baseline.
type Role struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Framing string `yaml:"framing" json:"framing"`
}

// Catalog is a validated set of scenarios and roles.
type Catalog struct {
	Scenarios []Scenario `yaml:"scenarios" json:"scenarios"`
	Roles     []Role     `yaml:"roles" json:"roles"`

	scenarioByID map[string]int
	roleByID     map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultsYAML)
}

// Load reads and validates a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

func (c *Catalog) index() {
	c.scenarioByID = make(map[string]int, len(c.Scenarios))
	for i, s := range c.Scenarios {
		c.scenarioByID[s.ID] = i
	}
	c.roleByID = make(map[string]int, len(c.Roles))
	for i, r := range c.Roles {
		c.roleByID[r.ID] = i
	}
}

func (c *Catalog) validate() error {
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("catalog has no scenarios")
	}
	if len(c.Roles) == 0 {
		return fmt.Errorf("catalog has no roles")
	}

	seen := make(map[string]struct{}, len(c.Scenarios))
	for _, s := range c.Scenarios {
		if s.ID == "" {
			return fmt.Errorf("scenario %q has no id", s.Name)
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		if strings.TrimSpace(s.Description) == "" {
			return fmt.Errorf("scenario %q has an empty description", s.ID)
		}
		if err := validateOptions(s); err != nil {
			return err
		}
	}

	seen = make(map[string]struct{}, len(c.Roles))
	for _, r := range c.Roles {
		if r.ID == "" {
			return fmt.Errorf("role %q has no id", r.Name)
		}
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("duplicate role id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
		if strings.TrimSpace(r.Framing) == "" {
			return fmt.Errorf("role %q has an empty framing", r.ID)
		}
	}
	return nil
}

func validateOptions(s Scenario) error {
	if len(s.Options) < 2 {
		return fmt.Errorf("scenario %q needs at least two options, got %d", s.ID, len(s.Options))
	}
	if len(s.Options) > 4 {
		return fmt.Errorf("scenario %q has %d options, the maximum is four", s.ID, len(s.Options))
	}
	letters := make(map[string]struct{}, len(s.Options))
	for _, o := range s.Options {
		if len(o.Letter) != 1 || o.Letter[0] < 'A' || o.Letter[0] > 'D' {
			return fmt.Errorf("scenario %q option letter %q must be one of A through D", s.ID, o.Letter)
		}
		if _, ok := letters[o.Letter]; ok {
			return fmt.Errorf("scenario %q repeats option letter %q", s.ID, o.Letter)
		}
		letters[o.Letter] = struct{}{}
		if strings.TrimSpace(o.Text) == "" {
			return fmt.Errorf("scenario %q option %s has empty text", s.ID, o.Letter)
		}
	}
	return nil
}

// Scenario returns the scenario with the given id.
func (c *Catalog) Scenario(id string) (Scenario, bool) {
	i, ok := c.scenarioByID[id]
	if !ok {
		return Scenario{}, false
	}
	return c.Scenarios[i], true
}

// Role returns the role with the given id.
func (c *Catalog) Role(id string) (Role, bool) {
	i, ok := c.roleByID[id]
	if !ok {
		return Role{}, false
	}
	return c.Roles[i], true
}

// ScenarioIDs returns all scenario ids in catalog order.
func (c *Catalog) ScenarioIDs() []string {
	ids := make([]string, len(c.Scenarios))
	for i, s := range c.Scenarios {
		ids[i] = s.ID
	}
	return ids
}

// RoleIDs returns all role ids in catalog order.
func (c *Catalog) RoleIDs() []string {
	ids := make([]string, len(c.Roles))
	for i, r := range c.Roles {
		ids[i] = r.ID
	}
	return ids
}

// Family returns the provider portion of an OpenRouter model identifier,
// the segment before the first slash, lowercased. Identifiers without a
// slash are their own family.
func Family(modelID string) string {
	id := strings.ToLower(strings.TrimSpace(modelID))
	if i := strings.Index(id, "/"); i >= 0 {
		return id[:i]
	}
	return id
}
