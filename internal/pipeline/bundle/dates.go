package bundle

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts covers the date formats Indian hospital documents actually
// use, DD/MM/YYYY first.
var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
	"02 Jan 2006",
	"02 January 2006",
	"January 2, 2006",
	"02.01.2006",
	"2006/01/02",
}

// parseDate normalizes a raw extracted date to ISO 8601 (YYYY-MM-DD).
// Unrecognized non-empty input is returned unchanged so no information is
// lost; the validator flags it downstream.
func parseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

// birthDateFromAge estimates a birth date from an age like "58" or
// "58 years", anchored to January 1st of the computed year.
func birthDateFromAge(raw string, now time.Time) string {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return ""
	}
	age, err := strconv.Atoi(fields[0])
	if err != nil || age <= 0 {
		return ""
	}
	return strconv.Itoa(now.UTC().Year()-age) + "-01-01"
}

// parseAmount parses a numeric string that may carry Indian-style comma
// grouping ("1,25,000").
func parseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// fhirInstant renders a time in the UTC second-precision form NHCX
// endpoints expect.
func fhirInstant(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
