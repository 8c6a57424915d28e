package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solofeed/internal/model"
)

func TestHourlyBucketsInOrder(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	events := []model.EngagementEvent{
		{Timestamp: base.Add(2*time.Hour + 5*time.Minute), Type: "like"},
		{Timestamp: base.Add(10 * time.Minute), Type: "comment"},
		{Timestamp: base.Add(20 * time.Minute), Type: "like"},
		{Timestamp: base.Add(59 * time.Minute), Type: "like"},
	}
	got := Hourly(events)
	require.Len(t, got, 2)
	assert.Equal(t, base, got[0].Hour)
	assert.Equal(t, map[string]int{"comment": 1, "like": 2}, got[0].Counts)
	assert.Equal(t, 3, got[0].Total)
	assert.Equal(t, base.Add(2*time.Hour), got[1].Hour)
	assert.Equal(t, 1, got[1].Total)
}

func TestHourlyEmpty(t *testing.T) {
	assert.Empty(t, Hourly(nil))
}
