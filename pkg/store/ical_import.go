package store

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/borgmon/task-minder/pkg/models"
)

// importHorizon bounds how far ahead recurring events are expanded.
const importHorizon = 14 * 24 * time.Hour

// ImportICal converts the VEVENTs of an iCal file or URL into tasks: summary
// becomes the message, DTSTART the timestamp. Cancelled, all-day, and
// already-past events are skipped. Recurring events are expanded into one
// task per occurrence within the next two weeks. Individual events that fail
// to parse are logged and skipped rather than failing the import.
func ImportICal(src string, now time.Time) ([]models.Task, error) {
	body, err := readICalSource(src)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	dec := ical.NewDecoder(body)
	var tasks []models.Task

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tasks, fmt.Errorf("decode iCal from %s: %w", src, err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			tasks = append(tasks, tasksFromEvent(comp, now)...)
		}
	}

	return tasks, nil
}

func readICalSource(src string) (io.ReadCloser, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		resp, err := http.Get(src)
		if err != nil {
			return nil, fmt.Errorf("fetch iCal %s: %w", src, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch iCal %s: HTTP %d", src, resp.StatusCode)
		}
		return resp.Body, nil
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open iCal file: %w", err)
	}
	return f, nil
}

func tasksFromEvent(comp *ical.Component, now time.Time) []models.Task {
	summary := ""
	if prop := comp.Props.Get(ical.PropSummary); prop != nil {
		summary = prop.Value
	}
	if summary == "" {
		summary = "(untitled event)"
	}

	if prop := comp.Props.Get(ical.PropStatus); prop != nil && prop.Value == "CANCELLED" {
		log.Printf("Import: skipping cancelled event %q", summary)
		return nil
	}

	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		log.Printf("Import: skipping event %q without DTSTART", summary)
		return nil
	}
	if startProp.ValueType() == ical.ValueDate {
		log.Printf("Import: skipping all-day event %q", summary)
		return nil
	}
	start, err := startProp.DateTime(time.Local)
	if err != nil {
		log.Printf("Import: skipping event %q with unparseable DTSTART: %v", summary, err)
		return nil
	}
	start = start.In(time.Local)

	if prop := comp.Props.Get(ical.PropRecurrenceRule); prop != nil {
		return expandRecurring(summary, start, prop.Value, now)
	}

	if start.Before(now) {
		return nil
	}
	return []models.Task{{
		ID:        uuid.New().String(),
		Message:   summary,
		Timestamp: models.LocalTime(start),
	}}
}

// expandRecurring generates one task per occurrence of a DAILY or WEEKLY rule
// within the import horizon. Other frequencies are skipped with a log line;
// full RRULE support would need github.com/teambition/rrule-go.
func expandRecurring(summary string, start time.Time, rrule string, now time.Time) []models.Task {
	var step time.Duration
	switch {
	case strings.Contains(rrule, "FREQ=DAILY"):
		step = 24 * time.Hour
	case strings.Contains(rrule, "FREQ=WEEKLY"):
		step = 7 * 24 * time.Hour
	default:
		log.Printf("Import: skipping event %q with unsupported RRULE %q", summary, rrule)
		return nil
	}

	base := uuid.New().String()
	end := now.Add(importHorizon)

	var tasks []models.Task
	for current := start; current.Before(end); current = current.Add(step) {
		if current.Before(now) {
			continue
		}
		tasks = append(tasks, models.Task{
			ID:        base + "-" + current.Format(models.DateKeyLayout),
			Message:   summary,
			Timestamp: models.LocalTime(current),
		})
	}
	return tasks
}
