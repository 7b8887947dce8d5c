// Package ical renders open donations as an RFC 5545 calendar so that
// volunteers can subscribe to pickup deadlines.
package ical

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jredh-dev/foodshare/pkg/models"
)

// Calendar holds metadata for the VCALENDAR wrapper.
type Calendar struct {
	Name        string
	Description string
	Refresh     time.Duration // suggested refresh interval, 0 to omit
	Location    *time.Location
	// Reminder is how long before expiry the alarm fires. 0 means one hour.
	Reminder time.Duration
}

// Write renders one VEVENT per donation, starting at its expiry time, and
// returns how many donations were skipped because their expiry could not be
// parsed.
func Write(w io.Writer, cal Calendar, donations []models.Donation, now time.Time) (skipped int, err error) {
	loc := cal.Location
	if loc == nil {
		loc = time.Local
	}
	reminder := cal.Reminder
	if reminder <= 0 {
		reminder = time.Hour
	}

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//jredh-dev//foodshare//EN\r\n")
	b.WriteString("METHOD:PUBLISH\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\n")

	writeProp(&b, "NAME", escapeText(cal.Name))
	writeProp(&b, "X-WR-CALNAME", escapeText(cal.Name))
	if cal.Description != "" {
		writeProp(&b, "X-WR-CALDESC", escapeText(cal.Description))
	}
	if cal.Refresh > 0 {
		dur := formatDuration(cal.Refresh)
		writeProp(&b, "REFRESH-INTERVAL;VALUE=DURATION", dur)
		writeProp(&b, "X-PUBLISHED-TTL", dur)
	}

	for i := range donations {
		expiry, perr := models.ParseExpiry(donations[i].ExpiryTime, loc)
		if perr != nil {
			skipped++
			continue
		}
		writeEvent(&b, &donations[i], expiry, reminder, now)
	}

	b.WriteString("END:VCALENDAR\r\n")
	_, err = io.WriteString(w, b.String())
	return skipped, err
}

func writeEvent(b *strings.Builder, d *models.Donation, expiry time.Time, reminder time.Duration, now time.Time) {
	summary := "Food expires: " + d.Purpose

	b.WriteString("BEGIN:VEVENT\r\n")
	writeProp(b, "UID", d.ID+"@foodshare")
	writeProp(b, "DTSTAMP", formatDateTime(now))
	writeProp(b, "DTSTART", formatDateTime(expiry))
	writeProp(b, "SUMMARY", escapeText(summary))
	writeProp(b, "DESCRIPTION", escapeText(fmt.Sprintf("For: %s\nContact: %s\nStatus: %s", d.Target, d.Phone, d.Status)))
	if d.Location != "" {
		writeProp(b, "LOCATION", escapeText(d.Location))
	}
	writeProp(b, "CATEGORIES", strings.ToUpper(string(d.Target)))
	if expiry.Before(now) {
		writeProp(b, "STATUS", "CANCELLED")
	} else {
		writeProp(b, "STATUS", "CONFIRMED")
	}
	writeProp(b, "CREATED", formatDateTime(d.CreatedAt))
	updated := d.UpdatedAt
	if updated.IsZero() {
		updated = d.CreatedAt
	}
	writeProp(b, "LAST-MODIFIED", formatDateTime(updated))

	b.WriteString("BEGIN:VALARM\r\n")
	writeProp(b, "TRIGGER", "-"+formatDuration(reminder))
	writeProp(b, "ACTION", "DISPLAY")
	writeProp(b, "DESCRIPTION", escapeText(summary))
	b.WriteString("END:VALARM\r\n")

	b.WriteString("END:VEVENT\r\n")
}

// writeProp writes one content line, folded at 75 octets without splitting
// a UTF-8 sequence.
func writeProp(b *strings.Builder, name, value string) {
	line := name + ":" + value
	limit := 75
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines carry a leading space.
		limit = 74
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatDuration converts a Go duration to an iCal DURATION value (e.g. PT1H, PT30M).
func formatDuration(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("P%dD", int(d/(24*time.Hour)))
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 && minutes > 0 {
		return fmt.Sprintf("PT%dH%dM", hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("PT%dH", hours)
	}
	return fmt.Sprintf("PT%dM", minutes)
}

// escapeText escapes special characters per RFC 5545 section 3.3.11.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
