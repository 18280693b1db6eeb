package clock

import (
	"testing"
	"time"
)

func TestManualAdvance(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManual(start)

	if !c.Now().Equal(start) {
		t.Fatalf("expected %v got %v", start, c.Now())
	}

	c.Advance(30 * 24 * time.Hour)
	want := start.AddDate(0, 0, 30)
	if !c.Now().Equal(want) {
		t.Fatalf("expected %v got %v", want, c.Now())
	}
}

func TestSystemIsUTC(t *testing.T) {
	if loc := (System{}).Now().Location(); loc != time.UTC {
		t.Fatalf("expected UTC got %v", loc)
	}
}
