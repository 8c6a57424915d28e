package schedule

import (
	"testing"
	"time"
)

func TestIsQuiet(t *testing.T) {
	at := time.Date(2025, 1, 1, 3, 30, 0, 0, time.UTC)
	if !IsQuiet(at, []int{2, 3}) {
		t.Fatalf("3:30 should be quiet within hours 2,3")
	}
	if IsQuiet(at, []int{4}) || IsQuiet(at, nil) {
		t.Fatalf("3:30 should not be quiet outside hour 4 or with no quiet hours")
	}
}

func TestNextWindowSkipsQuietHours(t *testing.T) {
	at := time.Date(2025, 1, 1, 3, 30, 0, 0, time.UTC)
	if got := NextWindow(at, nil); !got.Equal(at) {
		t.Fatalf("no quiet hours: got %v want %v", got, at)
	}
	want := time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC)
	if got := NextWindow(at, []int{3, 4, 5}); !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNextWindowAllQuiet(t *testing.T) {
	all := make([]int, 24)
	for i := range all {
		all[i] = i
	}
	at := time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)
	if got := NextWindow(at, all); !got.Equal(at.Add(15 * time.Minute)) {
		t.Fatalf("all quiet: got %v want %v", got, at.Add(15*time.Minute))
	}
}
