package shows

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookupKey(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"Show: Name!":           "showname",
		"showname":              "showname",
		"Marvel's Agents.of.S": "marvelsagentsofs",
		"  The 100 ":            "the100",
		"Pokémon":               "pokemon",
		"":                      "",
		"!!!":                   "",
	}
	for in, want := range tests {
		if got := LookupKey(in); got != want {
			t.Errorf("LookupKey(%q) = %q, want %q", in, got, want)
		}
		if again := LookupKey(LookupKey(in)); again != LookupKey(in) {
			t.Errorf("LookupKey not idempotent for %q: %q", in, again)
		}
	}
	if LookupKey("Show: Name!") != LookupKey("showname") {
		t.Error("lookup key should ignore case and punctuation")
	}
}

func TestFindIDAndName(t *testing.T) {
	t.Parallel()
	table := New("unused.yml",
		Entry{Name: "Show Name", ID: "12345"},
		Entry{Name: "Doctor Who (2005)", ID: "78804"},
		Entry{Name: "Castle", ID: "83462"},
	)

	tests := map[string]struct {
		guess  string
		wantID string
		wantOK bool
	}{
		"exact":                {"Show Name", "12345", true},
		"case and punctuation": {"show.name", "12345", true},
		"year suffix kept":     {"Doctor Who 2005", "78804", true},
		"year missing":         {"Doctor Who", "", false},
		"unknown":              {"Unknown Show", "", false},
		"empty":                {"", "", false},
		"blank":                {"   ", "", false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			id, ok := table.FindID(tc.guess)
			if ok != tc.wantOK || id != tc.wantID {
				t.Errorf("FindID(%q) = (%q, %v), want (%q, %v)", tc.guess, id, ok, tc.wantID, tc.wantOK)
			}
		})
	}

	if name, ok := table.FindName("83462"); !ok || name != "Castle" {
		t.Errorf("FindName(83462) = (%q, %v), want (Castle, true)", name, ok)
	}
	if _, ok := table.FindName("999"); ok {
		t.Error("FindName(999) should not match")
	}
	if _, ok := table.FindName(""); ok {
		t.Error("FindName(\"\") should not match")
	}
}

func TestFirstMatchWinsInFileOrder(t *testing.T) {
	t.Parallel()
	table := New("unused.yml",
		Entry{Name: "The Office (US)", ID: "73244"},
		Entry{Name: "the office us", ID: "11111"},
		Entry{Name: "Alias", ID: "73244"},
	)
	if id, _ := table.FindID("The.Office.US"); id != "73244" {
		t.Errorf("FindID = %q, want first entry id 73244", id)
	}
	if name, _ := table.FindName("73244"); name != "The Office (US)" {
		t.Errorf("FindName = %q, want first entry name", name)
	}
}

func TestAddRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "shows.yml")
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load(missing) error = %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("Load(missing) len = %d, want 0", table.Len())
	}

	if err := table.Add("Show Name", "12345"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := table.Add("Lost", "73739"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []Entry{{Name: "Show Name", ID: "12345"}, {Name: "Lost", ID: "73739"}}
	if diff := cmp.Diff(want, reloaded.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	id, ok := reloaded.FindID("Show Name")
	if !ok || id != "12345" {
		t.Errorf("FindID after reload = (%q, %v)", id, ok)
	}
	name, ok := reloaded.FindName("12345")
	if !ok || name != "Show Name" {
		t.Errorf("FindName after reload = (%q, %v)", name, ok)
	}
}

func TestAddPreservesUnrelatedEntries(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "shows.yml")
	original := "# my shows\nLost: 73739\nDoctor Who (2005): 78804\nSome Show: abc-1\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := table.Add("Lost", "99999"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := table.Add("Castle", "83462"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"# my shows", "Lost: 99999", "Doctor Who (2005): 78804", "Some Show: abc-1", "Castle: 83462"} {
		if !strings.Contains(text, want) {
			t.Errorf("saved file missing %q:\n%s", want, text)
		}
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{
		{Name: "Lost", ID: "99999"},
		{Name: "Doctor Who (2005)", ID: "78804"},
		{Name: "Some Show", ID: "abc-1"},
		{Name: "Castle", ID: "83462"},
	}
	if diff := cmp.Diff(want, reloaded.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestAddRejectsBlank(t *testing.T) {
	t.Parallel()
	table := New(filepath.Join(t.TempDir(), "shows.yml"))
	if err := table.Add("", "1"); err == nil {
		t.Error("Add with empty name should fail")
	}
	if err := table.Add("Show", " "); err == nil {
		t.Error("Add with empty id should fail")
	}
}

func TestLoadRejectsNonMapping(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "shows.yml")
	if err := os.WriteFile(path, []byte("- a\n- b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of a sequence should fail")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "shows.yml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load(empty) error = %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len = %d, want 0", table.Len())
	}
}
