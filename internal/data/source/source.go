// Package source talks to the bucket-oriented event store and fans fetches
// out across buckets. Everything downstream of this package is
// deterministic and single-threaded; concurrency stops here.
package source

import (
	"context"

	"github.com/timegrain/timegrain/internal/core/model"
)

// BucketInfo is the store's own description of one bucket.
type BucketInfo struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Client   string `json:"client"`
	Hostname string `json:"hostname"`
}

// Kind maps the store's bucket type strings onto the engine's bucket kinds.
// Unknown types map to "".
func (b BucketInfo) Kind() model.BucketKind {
	switch b.Type {
	case "currentwindow":
		return model.BucketWindow
	case "afkstatus":
		return model.BucketAFK
	case "web.tab.current":
		return model.BucketWeb
	}
	return ""
}

// BucketSource is the event store's query surface. Empty ranges return
// empty slices, never errors; errors mean genuine transport or server
// faults.
type BucketSource interface {
	// ListBuckets returns every bucket the store knows about.
	ListBuckets(ctx context.Context) ([]BucketInfo, error)

	// Events returns the bucket's raw events overlapping [startMs, endMs),
	// bounds in Unix milliseconds UTC.
	Events(ctx context.Context, bucketID string, startMs, endMs int64) ([]model.RawEvent, error)
}
