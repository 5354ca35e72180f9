package triage

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed catalogs/default.yaml
var defaultCatalogYAML []byte

// Rule is one immutable catalog entry: a predicate plus the advisory
// payload emitted when it matches.
type Rule struct {
	ID                string    `yaml:"id" json:"id"`
	Name              string    `yaml:"name" json:"name"`
	Severity          Severity  `yaml:"severity" json:"severity"`
	When              Predicate `yaml:"when" json:"when"`
	Message           string    `yaml:"message" json:"message"`
	Instructions      []string  `yaml:"instructions" json:"instructions"`
	SuggestedMedicine string    `yaml:"suggested_medicine,omitempty" json:"suggested_medicine,omitempty"`
}

// SymptomItem is picker metadata for one selectable symptom.
type SymptomItem struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	Icon     string `yaml:"icon,omitempty" json:"icon,omitempty"`
	Category string `yaml:"category" json:"category"`
}

// Catalog is an ordered, versioned set of rules. Emergency rules are always
// evaluated first; common rules only when no critical emergency matched.
// Rule order within each list is declaration order and never changes after
// load - evaluation order depends on it.
type Catalog struct {
	Version     int
	Emergency   []Rule
	Common      []Rule
	SymptomList []SymptomItem
}

// rawCatalog defers per-rule decoding so one unparseable rule can be
// excluded without losing the rest of the catalog.
type rawCatalog struct {
	Version     int           `yaml:"version"`
	Emergency   []yaml.Node   `yaml:"emergency"`
	Common      []yaml.Node   `yaml:"common"`
	SymptomList []SymptomItem `yaml:"symptom_list"`
}

// ParseCatalog decodes a YAML catalog.
//
// A rule that fails to decode or validate is excluded and logged - never
// silently ignored, never fatal for the rest of the catalog. The catalog
// as a whole is only rejected when the document itself is malformed.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		Version:     raw.Version,
		Emergency:   decodeRules("emergency", raw.Emergency),
		Common:      decodeRules("common", raw.Common),
		SymptomList: raw.SymptomList,
	}
	for i := range c.SymptomList {
		c.SymptomList[i].ID = norm.NFC.String(c.SymptomList[i].ID)
	}
	return c, nil
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog parses the embedded catalog shipped with the binary.
// Panics only if the embedded data is broken, which a test pins down.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// decodeRules decodes each rule node independently, keeping declaration
// order and dropping (with a warning) any rule that cannot be used.
func decodeRules(list string, nodes []yaml.Node) []Rule {
	rules := make([]Rule, 0, len(nodes))
	for i, node := range nodes {
		var r Rule
		if err := node.Decode(&r); err != nil {
			slog.Warn("excluding unparseable rule",
				"catalog", list,
				"index", i,
				"error", err,
			)
			continue
		}
		if r.ID == "" {
			slog.Warn("excluding rule without id", "catalog", list, "index", i)
			continue
		}
		if err := r.When.validate(); err != nil {
			slog.Warn("excluding rule with invalid predicate",
				"catalog", list,
				"rule_id", r.ID,
				"error", err,
			)
			continue
		}
		normalizeRule(&r)
		rules = append(rules, r)
	}
	return rules
}

// normalizeRule NFC-normalizes every id the predicate tree references so
// catalog ids compare equal to normalized input ids.
func normalizeRule(r *Rule) {
	r.ID = norm.NFC.String(r.ID)
	normalizePredicate(&r.When)
}

func normalizePredicate(p *Predicate) {
	p.Symptom = norm.NFC.String(p.Symptom)
	p.Modifier = norm.NFC.String(p.Modifier)
	p.Gender = norm.NFC.String(p.Gender)
	for i := range p.All {
		normalizePredicate(&p.All[i])
	}
	for i := range p.Any {
		normalizePredicate(&p.Any[i])
	}
	if p.Not != nil {
		normalizePredicate(p.Not)
	}
}

// Symptoms returns the selectable symptom list in catalog order.
func (c *Catalog) Symptoms() []SymptomItem {
	out := make([]SymptomItem, len(c.SymptomList))
	copy(out, c.SymptomList)
	return out
}

// Categories returns the distinct symptom categories, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, s := range c.SymptomList {
		if !seen[s.Category] {
			seen[s.Category] = true
			cats = append(cats, s.Category)
		}
	}
	sort.Strings(cats)
	return cats
}
