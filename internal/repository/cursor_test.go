package repository

import (
	"testing"
	"time"
)

func TestPostCursorRoundTrip(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	cursor := formatCursor(ts, 42)
	if cursor != "42:1700000000000000" {
		t.Errorf("formatCursor = %q, want %q", cursor, "42:1700000000000000")
	}

	gotTime, gotID, err := parseCursor(cursor)
	if err != nil {
		t.Fatalf("parseCursor failed: %v", err)
	}
	if gotID != 42 {
		t.Errorf("id = %d, want 42", gotID)
	}
	if !gotTime.Equal(ts) {
		t.Errorf("time = %v, want %v", gotTime, ts)
	}
}

// Postgres stores created_at at microsecond precision. A cursor built from a
// boundary row with a sub-second fraction must round-trip without regressing,
// otherwise rows created earlier in the same second compare on the wrong side
// of the keyset predicate and get skipped or repeated.
func TestPostCursorKeepsSubsecondPrecision(t *testing.T) {
	boundary := time.Date(2026, 8, 27, 10, 0, 10, 500_000_000, time.UTC)
	earlier := time.Date(2026, 8, 27, 10, 0, 10, 200_000_000, time.UTC)

	gotTime, gotID, err := parseCursor(formatCursor(boundary, 100))
	if err != nil {
		t.Fatalf("parseCursor failed: %v", err)
	}
	if gotID != 100 {
		t.Errorf("id = %d, want 100", gotID)
	}
	if !gotTime.Equal(boundary) {
		t.Errorf("round-tripped time %v regressed from %v", gotTime, boundary)
	}

	// A same-second, earlier row must still sort strictly before the cursor.
	if !earlier.Before(gotTime) {
		t.Errorf("row at %v no longer precedes cursor time %v", earlier, gotTime)
	}
	// And the boundary row itself must not re-qualify on ascending pages.
	if boundary.After(gotTime) {
		t.Errorf("boundary row at %v re-qualifies after cursor time %v", boundary, gotTime)
	}
}

func TestParseCursor_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{name: "no separator", cursor: "421700000000"},
		{name: "too many parts", cursor: "42:17:00"},
		{name: "non-numeric id", cursor: "abc:1700000000"},
		{name: "non-numeric timestamp", cursor: "42:xyz"},
		{name: "empty", cursor: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := parseCursor(tt.cursor); err == nil {
				t.Errorf("parseCursor(%q) should fail", tt.cursor)
			}
		})
	}
}
