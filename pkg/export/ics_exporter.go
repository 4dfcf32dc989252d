package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// FeedEvent is a single entry to publish in an iCalendar feed.
type FeedEvent struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// ICSExporter serializes events into an iCalendar (RFC 5545) document.
type ICSExporter struct {
	prodID string
}

// NewICSExporter constructs an ICS exporter with the given product identifier.
func NewICSExporter(prodID string) *ICSExporter {
	if prodID == "" {
		prodID = "-//Athro//Study Planner//EN"
	}
	return &ICSExporter{prodID: prodID}
}

// Render builds the VCALENDAR payload for the provided events.
func (e *ICSExporter) Render(name string, events []FeedEvent) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.prodID)
	if name != "" {
		cal.SetName(name)
	}

	now := time.Now().UTC()
	for _, event := range events {
		if event.ID == "" {
			return nil, fmt.Errorf("feed event requires an id")
		}
		ve := cal.AddEvent(event.ID)
		ve.SetDtStampTime(now)
		ve.SetStartAt(event.Start.UTC())
		ve.SetEndAt(event.End.UTC())
		ve.SetSummary(event.Summary)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
	}

	return []byte(cal.Serialize()), nil
}
