package model

import (
	"fmt"
	"strings"
	"time"
)

// LogRecord is the intermediate type produced by readers and consumed by the
// pipeline: one raw log line plus its derived timestamp and canonical form.
type LogRecord struct {
	Timestamp time.Time
	Raw       string // original line text
	Canonical string // preprocessed text used for embedding and dedup
}

// ParseTimestamp extracts a syslog-style "Mon DD HH:MM:SS" prefix from the
// first three whitespace-separated fields of a line, assuming the current
// year and the local time zone. Lines without a parseable prefix get the
// current time, so they always pass the ingest time gate.
func ParseTimestamp(line string, now time.Time) time.Time {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return now
	}
	prefix := strings.Join(fields[:3], " ")
	ts, err := time.ParseInLocation("Jan 2 15:04:05 2006",
		fmt.Sprintf("%s %d", prefix, now.Year()), now.Location())
	if err != nil {
		return now
	}
	return ts
}
