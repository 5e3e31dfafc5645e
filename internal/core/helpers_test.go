package core

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Digital-Shane/tvshelf/internal/catalog"
	"github.com/rs/zerolog"
)

type stubCatalog struct {
	titles     map[string]string
	findShows  func(query string) []catalog.Show
	titleCalls int
}

func (s *stubCatalog) Name() string { return "stub" }

func (s *stubCatalog) FindShows(_ context.Context, query string) []catalog.Show {
	if s.findShows == nil {
		return nil
	}
	return s.findShows(query)
}

func (s *stubCatalog) TitleForEpisode(_ context.Context, showID string, season, episode int) string {
	s.titleCalls++
	return s.titles[fmt.Sprintf("%s/%d/%d", showID, season, episode)]
}

func (s *stubCatalog) EpisodesList(context.Context, string) []catalog.Episode { return nil }

func (s *stubCatalog) ReferenceURL(showID string) string { return "https://catalog.test/" + showID }

type scriptedConfirmer struct {
	answers []bool
	prompts []string
	details []string
}

func (c *scriptedConfirmer) Confirm(prompt, detail string) bool {
	c.prompts = append(c.prompts, prompt)
	c.details = append(c.details, detail)
	if len(c.answers) == 0 {
		return false
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer
}

type stubProbe struct {
	duration time.Duration
	err      error
}

func (p stubProbe) Duration(context.Context, string) (time.Duration, error) {
	return p.duration, p.err
}

// captureLog returns a JSON logger writing into a buffer.
func captureLog() (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return zerolog.New(&buf).Level(zerolog.DebugLevel), &buf
}

// messages extracts the message of each JSON log line, replacing root with <root>.
func messages(t *testing.T, buf *bytes.Buffer, root string) []string {
	t.Helper()
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var evt map[string]any
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			t.Fatalf("bad log line %q: %v", sc.Text(), err)
		}
		msg, _ := evt["message"].(string)
		if root != "" {
			msg = strings.ReplaceAll(msg, root, "<root>")
		}
		out = append(out, msg)
	}
	return out
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// snapshot lists every path below root, relative to it.
func snapshot(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	err := filepath.Walk(root, func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return paths
}
