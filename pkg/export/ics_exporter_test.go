package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestICSRenderProducesCalendar(t *testing.T) {
	exporter := NewICSExporter("-//Athro AI//Study API//EN")

	start := time.Date(2026, 1, 12, 16, 0, 0, 0, time.UTC)
	payload, err := exporter.Render("Athro Study Sessions", []FeedEvent{
		{ID: "ev-1", Summary: "Maths Study Session", Description: "Confidence: low", Start: start, End: start.Add(45 * time.Minute)},
		{ID: "ev-2", Summary: "English Study Session", Start: start.Add(24 * time.Hour), End: start.Add(24*time.Hour + 45*time.Minute)},
	})
	require.NoError(t, err)

	content := string(payload)
	assert.Contains(t, content, "BEGIN:VCALENDAR")
	assert.Contains(t, content, "PRODID:-//Athro AI//Study API//EN")
	assert.Contains(t, content, "UID:ev-1")
	assert.Contains(t, content, "UID:ev-2")
	assert.Contains(t, content, "SUMMARY:Maths Study Session")
	assert.Contains(t, content, "DTSTART:20260112T160000Z")
	assert.Contains(t, content, "END:VCALENDAR")
}

func TestICSRenderRequiresEventIDs(t *testing.T) {
	_, err := NewICSExporter("").Render("feed", []FeedEvent{{Summary: "missing id"}})
	require.Error(t, err)
}

func TestICSRenderEmptyFeed(t *testing.T) {
	payload, err := NewICSExporter("").Render("Athro Study Sessions", nil)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "BEGIN:VCALENDAR")
	assert.NotContains(t, string(payload), "BEGIN:VEVENT")
}
