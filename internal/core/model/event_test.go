package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedEventEnd(t *testing.T) {
	e := NormalizedEvent{Start: 1000, DurationMs: 500}
	assert.Equal(t, int64(1500), e.End())
}

func TestOutputEventTimes(t *testing.T) {
	e := OutputEvent{Start: 1_600_000_000_000, End: 1_600_000_060_000}
	assert.Equal(t, time.UTC, e.StartTime().Location())
	assert.Equal(t, int64(1_600_000_000), e.StartTime().Unix())
	assert.Equal(t, int64(1_600_000_060), e.EndTime().Unix())
}

func TestStringOrEmpty(t *testing.T) {
	assert.Equal(t, "", StringOrEmpty(nil))
	assert.Equal(t, "x", StringOrEmpty(StringPtr("x")))
}

func TestWarningString(t *testing.T) {
	w := MalformedEventsWarning("bucket-a", 3)
	assert.Contains(t, w.String(), "bucket-a")
	assert.Contains(t, w.String(), "3")

	f := FetchFailedWarning("bucket-b", assert.AnError)
	assert.Contains(t, f.String(), "bucket-b")
	assert.Contains(t, f.String(), "fetch_failed")
}
