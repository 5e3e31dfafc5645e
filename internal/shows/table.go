// Package shows holds the lookup table mapping show display names to catalog ids.
//
// The table is a flat YAML mapping. It is read once per run and rewritten in
// full on every Add. Entries keep their file order, which is also the order
// lookups scan in, so "first match wins" is well defined.
package shows

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Entry is one display name to catalog id mapping.
type Entry struct {
	Name string
	ID   string
}

// Table is the in-memory lookup table backed by a YAML file.
type Table struct {
	path string
	doc  *yaml.Node
}

// New returns an unsaved table for path seeded with entries.
func New(path string, entries ...Entry) *Table {
	t := &Table{path: path, doc: emptyDocument()}
	for _, e := range entries {
		t.set(e.Name, e.ID)
	}
	return t
}

// Load reads the table at path. A missing or empty file yields an empty table.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(path), nil
		}
		return nil, fmt.Errorf("failed to read shows file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse shows file: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return New(path), nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return New(path), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("shows file %s is not a name: id mapping", path)
	}
	return &Table{path: path, doc: &doc}, nil
}

// Path returns the backing file location.
func (t *Table) Path() string {
	return t.path
}

// Entries returns the mappings in file order.
func (t *Table) Entries() []Entry {
	m := t.mapping()
	out := make([]Entry, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		out = append(out, Entry{Name: m.Content[i].Value, ID: m.Content[i+1].Value})
	}
	return out
}

// Len reports the number of mappings.
func (t *Table) Len() int {
	return len(t.mapping().Content) / 2
}

// FindID returns the catalog id of the first entry whose lookup key equals
// the key of guessed.
func (t *Table) FindID(guessed string) (string, bool) {
	if strings.TrimSpace(guessed) == "" {
		return "", false
	}
	want := LookupKey(guessed)
	for _, e := range t.Entries() {
		if LookupKey(e.Name) == want && e.ID != "" {
			return e.ID, true
		}
	}
	return "", false
}

// FindName returns the first display name mapped to id.
func (t *Table) FindName(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	for _, e := range t.Entries() {
		if e.ID == id {
			return e.Name, true
		}
	}
	return "", false
}

// Add inserts or overwrites name and rewrites the whole file.
func (t *Table) Add(name, id string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("show name is empty")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("catalog id is empty")
	}
	t.set(name, id)
	return t.Save()
}

// Save writes the table back to its file.
func (t *Table) Save() error {
	if dir := filepath.Dir(t.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create shows directory: %w", err)
		}
	}
	data, err := yaml.Marshal(t.doc)
	if err != nil {
		return fmt.Errorf("failed to marshal shows: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write shows file: %w", err)
	}
	return nil
}

func (t *Table) set(name, id string) {
	m := t.mapping()
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == name {
			m.Content[i+1] = idNode(id)
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
		idNode(id),
	)
}

func (t *Table) mapping() *yaml.Node {
	return t.doc.Content[0]
}

func emptyDocument() *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
	}
}

// idNode keeps numeric ids plain so files stay readable as name: 12345.
func idNode(id string) *yaml.Node {
	tag := "!!str"
	if isDigits(id) {
		tag = "!!int"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: id}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LookupKey normalizes a show name for matching: accents are folded to their
// base letter, then the result is lowercased and everything outside [a-z0-9]
// is dropped.
func LookupKey(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
