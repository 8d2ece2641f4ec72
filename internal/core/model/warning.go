package model

import "fmt"

// WarningKind classifies recoverable conditions absorbed during a run.
type WarningKind string

const (
	// WarnFetchFailed marks a bucket whose fetch failed and was treated as empty.
	WarnFetchFailed WarningKind = "fetch_failed"
	// WarnMalformedEvent marks raw records skipped during normalization.
	WarnMalformedEvent WarningKind = "malformed_event"
)

// Warning is a recoverable, per-bucket condition reported alongside the
// timeline instead of failing the run.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	BucketID string      `json:"bucketId"`
	Count    int         `json:"count,omitempty"`
	Cause    string      `json:"cause,omitempty"`
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnMalformedEvent:
		return fmt.Sprintf("bucket %s: skipped %d malformed event(s)", w.BucketID, w.Count)
	default:
		return fmt.Sprintf("bucket %s: %s (%s)", w.BucketID, w.Kind, w.Cause)
	}
}

// FetchFailedWarning builds the warning for a bucket whose fetch failed.
func FetchFailedWarning(bucketID string, cause error) Warning {
	return Warning{Kind: WarnFetchFailed, BucketID: bucketID, Cause: cause.Error()}
}

// MalformedEventsWarning builds the warning for skipped raw records.
func MalformedEventsWarning(bucketID string, count int) Warning {
	return Warning{Kind: WarnMalformedEvent, BucketID: bucketID, Count: count}
}
