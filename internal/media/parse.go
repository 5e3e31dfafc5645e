package media

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Filename parsing for downloaded episodes.
//
// Release names come in two community conventions, "Show.Name.S01E02" and
// "Show.Name.1x02", either on the file itself or on the folder the release was
// unpacked into. Both forms allow a second episode number for double episodes.
var (
	// dottedSxxExxRe matches Show.Name.S01E02[E03|-E03|+E03|-03|+03].<anything>
	dottedSxxExxRe = regexp.MustCompile(`(?i)^(.*)\.S(\d{1,2})E(\d{2})(?:(?:[-+]?E|[-+])(\d{2}))?\.`)

	// dottedNxNNRe matches Show.Name.1x02[-03|+03].<anything>
	dottedNxNNRe = regexp.MustCompile(`(?i)^(.*)\.(\d{1,2})x(\d{2})(?:[-+](\d{2}))?\.`)

	// videoRe matches the container extensions picked up by a library scan.
	videoRe = regexp.MustCompile(`(?i)\.(mp4|mkv|avi|m4v)$`)
)

// ParsedName is what a release name tells us before any lookup happens.
type ParsedName struct {
	GuessedName string
	Season      int
	Episodes    []int
}

// Token renders the episode numbering as used in library filenames: 1x02 or 1x02+1x03.
func (p ParsedName) Token() string {
	return EpisodeToken(p.Season, p.Episodes)
}

// EpisodeToken joins each episode as <season>x<episode zero-padded to two digits>.
func EpisodeToken(season int, episodes []int) string {
	parts := make([]string, 0, len(episodes))
	for _, ep := range episodes {
		parts = append(parts, fmt.Sprintf("%dx%02d", season, ep))
	}
	return strings.Join(parts, "+")
}

// ParseFilename extracts show, season and episodes from path.
//
// Attempts run in a fixed order and the first hit wins: S01E02 on the file
// name, S01E02 on the parent folder, 1x02 on the file name, 1x02 on the parent
// folder. ok is false when none of them match.
func ParseFilename(path string) (ParsedName, bool) {
	base := filepath.Base(path)
	parent := filepath.Base(filepath.Dir(path))

	for _, re := range []*regexp.Regexp{dottedSxxExxRe, dottedNxNNRe} {
		for _, candidate := range []string{base, parent} {
			if m := re.FindStringSubmatch(candidate); m != nil {
				return fromMatch(m)
			}
		}
	}
	return ParsedName{}, false
}

func fromMatch(m []string) (ParsedName, bool) {
	season, err := strconv.Atoi(m[2])
	if err != nil {
		return ParsedName{}, false
	}
	episodes := make([]int, 0, 2)
	for _, raw := range m[3:5] {
		if raw == "" {
			continue
		}
		ep, err := strconv.Atoi(raw)
		if err != nil {
			return ParsedName{}, false
		}
		episodes = append(episodes, ep)
	}
	return ParsedName{
		GuessedName: strings.ReplaceAll(m[1], ".", " "),
		Season:      season,
		Episodes:    episodes,
	}, true
}

// IsVideo reports whether filename has one of the scanned video extensions.
func IsVideo(filename string) bool {
	return videoRe.MatchString(filename)
}

// ExtractExtension returns the extension of filename including the leading dot.
func ExtractExtension(filename string) string {
	return filepath.Ext(filename)
}
