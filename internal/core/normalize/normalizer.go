// Package normalize converts raw, source-specific bucket events into the
// uniform shape the rest of the pipeline consumes.
package normalize

import (
	"fmt"

	"github.com/timegrain/timegrain/internal/core/config"
	"github.com/timegrain/timegrain/internal/core/model"
	"github.com/timegrain/timegrain/internal/util"
)

// Normalizer converts one bucket's raw events per its kind.
type Normalizer struct {
	cfg config.Config
}

// New creates a Normalizer for the given run configuration.
func New(cfg config.Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// NormalizeBucket converts a bucket's raw events into normalized events and
// returns the number of malformed records skipped. Malformed means the
// timestamp does not parse or the duration is negative; both are counted,
// never fatal.
//
// Zero-duration events are retained: they can still matter for
// exact-boundary joins downstream. The caller's minimum-duration filter
// applies to window and web events only; AFK state is never dropped by
// duration, since a short not-afk blip is still a true state transition.
func (n *Normalizer) NormalizeBucket(bucketID string, kind model.BucketKind, raws []model.RawEvent) ([]model.NormalizedEvent, int) {
	events := make([]model.NormalizedEvent, 0, len(raws))
	skipped := 0

	for _, raw := range raws {
		ev, err := n.normalizeOne(raw, kind)
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip malformed event in bucket %s: %v", bucketID, err))
			skipped++
			continue
		}
		if kind != model.BucketAFK && ev.DurationMs < n.cfg.MinDurationMs {
			continue
		}
		events = append(events, ev)
	}

	return events, skipped
}

func (n *Normalizer) normalizeOne(raw model.RawEvent, kind model.BucketKind) (model.NormalizedEvent, error) {
	start, err := util.ParseTimestampMs(raw.Timestamp)
	if err != nil {
		return model.NormalizedEvent{}, err
	}
	if raw.Duration < 0 {
		return model.NormalizedEvent{}, fmt.Errorf("negative duration %v", raw.Duration)
	}

	ev := model.NormalizedEvent{
		Start:      start,
		DurationMs: util.SecondsToMs(raw.Duration),
	}

	switch kind {
	case model.BucketAFK:
		// AFK events carry only a status; the app field is forced to a
		// configured sentinel and the status string travels as the title.
		app := n.cfg.AFKAppName
		ev.App = &app
		ev.Title = stringField(raw.Data, "status")
	default:
		ev.App = stringField(raw.Data, "app")
		ev.Title = stringField(raw.Data, "title")
		ev.URL = stringField(raw.Data, "url")
	}

	return ev, nil
}

// stringField reads a string-valued key from the raw payload, mapping
// missing keys, nulls and non-string values to nil.
func stringField(data map[string]any, key string) *string {
	if data == nil {
		return nil
	}
	v, ok := data[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
