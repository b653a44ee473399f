package radar

import (
	"testing"
	"time"
)

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024", "2024-01-01", false},
		{"2024-06", "2024-06-01", false},
		{"2024-06-15", "2024-06-15", false},
		{" 2024-06-15 ", "2024-06-15", false},
		{"", "", true},
		{"2024-13", "", true},
		{"2024-02-30", "", true},
		{"2024-06-15-01", "", true},
		{"June 2024", "", true},
		{"2024-", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReleaseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReleaseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got.Format(dateLayout) != tt.want {
				t.Errorf("ParseReleaseDate(%q) = %s, want %s", tt.in, got.Format(dateLayout), tt.want)
			}
		})
	}
}

func TestWithin(t *testing.T) {
	now := time.Date(2024, 7, 1, 15, 30, 0, 0, time.UTC)
	cutoff := Cutoff(now, 4)
	if got := cutoff.Format(dateLayout); got != "2024-06-03" {
		t.Fatalf("Cutoff() = %s, want 2024-06-03", got)
	}

	tests := []struct {
		release string
		want    bool
	}{
		{"2024", false},
		{"2024-06", false},
		{"2024-07", true},
		{"2024-06-02", false},
		{"2024-06-03", true},
		{"2024-06-15", true},
		{"2023-12-31", false},
	}

	for _, tt := range tests {
		d, err := ParseReleaseDate(tt.release)
		if err != nil {
			t.Fatalf("ParseReleaseDate(%q) error = %v", tt.release, err)
		}
		if got := Within(d, cutoff); got != tt.want {
			t.Errorf("Within(%s) = %v, want %v", tt.release, got, tt.want)
		}
	}
}

func TestCutoff_YearOnlyInWindow(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	d, _ := ParseReleaseDate("2024")
	if !Within(d, Cutoff(now, 4)) {
		t.Error("year-only date at the start of the year should be within four weeks of Jan 10")
	}
}

func TestDedupe(t *testing.T) {
	in := []Candidate{
		{ID: "a", Album: "first"},
		{ID: "b"},
		{ID: "a", Album: "second"},
		{ID: "c"},
		{ID: "b"},
	}

	got := Dedupe(in)
	if len(got) != 3 {
		t.Fatalf("Dedupe() returned %d candidates, want 3", len(got))
	}
	for i, id := range []string{"a", "b", "c"} {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
	if got[0].Album != "first" {
		t.Errorf("Dedupe() kept %q, want first occurrence", got[0].Album)
	}
}

func TestSortByRelease(t *testing.T) {
	cands := []Candidate{
		{ID: "old", ReleaseDate: "2024-01-01"},
		{ID: "tie1", ReleaseDate: "2024-06-15"},
		{ID: "new", ReleaseDate: "2024-06-20"},
		{ID: "tie2", ReleaseDate: "2024-06-15"},
	}

	SortByRelease(cands)

	want := []string{"new", "tie1", "tie2", "old"}
	for i, id := range want {
		if cands[i].ID != id {
			t.Errorf("position %d = %q, want %q", i, cands[i].ID, id)
		}
	}
}

func TestDefaultPlaylistName(t *testing.T) {
	got := DefaultPlaylistName(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	if want := "Personal Release Radar - July 2024"; got != want {
		t.Errorf("DefaultPlaylistName() = %q, want %q", got, want)
	}
}
