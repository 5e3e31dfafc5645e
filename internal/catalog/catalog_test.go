package catalog

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		err       error
		wantCode  string
		wantRetry bool
	}{
		{"unauthorized", errors.New("request failed: 401 Unauthorized"), CodeAuthFailed, false},
		{"rate limited", errors.New("429 Too Many Requests"), CodeRateLimited, true},
		{"not found", errors.New("series not found"), CodeNotFound, false},
		{"unavailable", errors.New("503 Service Unavailable"), CodeUnavailable, true},
		{"other", errors.New("connection reset by peer"), CodeUnknown, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify("tvdb", tc.err)
			var ce *Error
			if !errors.As(got, &ce) {
				t.Fatalf("Classify() = %T, want *Error", got)
			}
			if ce.Code != tc.wantCode || ce.Retry != tc.wantRetry || ce.Catalog != "tvdb" {
				t.Errorf("Classify() = %+v, want code %s retry %v", ce, tc.wantCode, tc.wantRetry)
			}
		})
	}

	if Classify("tvdb", nil) != nil {
		t.Error("Classify(nil) should be nil")
	}

	already := &Error{Catalog: "tmdb", Code: CodeNotFound, Message: "x"}
	if got := Classify("tvdb", fmt.Errorf("wrapped: %w", already)); got != already {
		t.Errorf("Classify should pass through an existing *Error, got %v", got)
	}
}

func TestIsAuth(t *testing.T) {
	t.Parallel()
	if !IsAuth(Classify("tvdb", errors.New("401"))) {
		t.Error("IsAuth should be true for a 401")
	}
	if IsAuth(errors.New("401")) {
		t.Error("IsAuth should be false for an unclassified error")
	}
}

func TestParseAirDate(t *testing.T) {
	t.Parallel()
	want := time.Date(2008, 1, 20, 0, 0, 0, 0, time.UTC)
	tests := map[string]time.Time{
		"2008-01-20":           want,
		" 2008-01-20 ":         want,
		"2008-01-20T21:00:00Z": want,
		"":                     {},
		"soon":                 {},
		"2008-13-40":           {},
	}
	for in, expected := range tests {
		if got := ParseAirDate(in); !got.Equal(expected) {
			t.Errorf("ParseAirDate(%q) = %v, want %v", in, got, expected)
		}
	}
	if (Episode{}).HasAirDate() {
		t.Error("zero episode should not have an air date")
	}
	if !(Episode{AirDate: want}).HasAirDate() {
		t.Error("episode with date should report HasAirDate")
	}
}
