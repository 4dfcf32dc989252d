package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderOrdersColumnsByHeader(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Day", "Subject", "Duration (minutes)"},
		Rows: []map[string]string{
			{"Subject": "Maths", "Day": "Monday", "Duration (minutes)": "45"},
			{"Subject": "English", "Day": "Wednesday", "Duration (minutes)": "60"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Day,Subject,Duration (minutes)\nMonday,Maths,45\nWednesday,English,60\n", string(payload))
}

func TestCSVRenderFillsMissingCells(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Day", "Subject"},
		Rows:    []map[string]string{{"Day": "Friday"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Friday,\n")
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}
