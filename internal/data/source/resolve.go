package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/timegrain/timegrain/internal/core/config"
	"github.com/timegrain/timegrain/internal/util"
)

// ResolvedBuckets maps engine roles onto the store's concrete bucket IDs.
// The store suffixes bucket names with the host, so roles are matched by
// configured ID prefix.
type ResolvedBuckets struct {
	Window string
	AFK    string
	// Web maps browser name to that browser's tab bucket. Browsers whose
	// bucket is absent from the store are simply not present.
	Web map[string]string
}

// IDs returns every resolved bucket ID, window and AFK first, then web
// buckets in sorted browser order.
func (r ResolvedBuckets) IDs() []string {
	ids := []string{r.Window, r.AFK}
	names := make([]string, 0, len(r.Web))
	for name := range r.Web {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ids = append(ids, r.Web[name])
	}
	return ids
}

// Resolve matches the store's bucket list against the configured prefixes.
// Window and AFK buckets are required; a browser without a matching web
// bucket is skipped (its window events still flow through, just without tab
// enrichment).
func Resolve(buckets []BucketInfo, cfg config.Config) (ResolvedBuckets, error) {
	resolved := ResolvedBuckets{Web: make(map[string]string)}

	resolved.Window = matchPrefix(buckets, cfg.WindowBucketPrefix)
	resolved.AFK = matchPrefix(buckets, cfg.AFKBucketPrefix)

	var missing []string
	if resolved.Window == "" {
		missing = append(missing, fmt.Sprintf("window (prefix %q)", cfg.WindowBucketPrefix))
	}
	if resolved.AFK == "" {
		missing = append(missing, fmt.Sprintf("afk (prefix %q)", cfg.AFKBucketPrefix))
	}
	if len(missing) > 0 {
		return ResolvedBuckets{}, fmt.Errorf("no bucket found for role(s): %s", strings.Join(missing, ", "))
	}

	for _, b := range cfg.Browsers {
		id := matchPrefix(buckets, b.BucketPrefix)
		if id == "" {
			util.LogDebug(fmt.Sprintf("No web bucket for browser %s (prefix %q)", b.Name, b.BucketPrefix))
			continue
		}
		resolved.Web[b.Name] = id
	}

	return resolved, nil
}

// matchPrefix returns the lexicographically smallest bucket ID with the
// given prefix, so resolution is stable when several hosts match.
func matchPrefix(buckets []BucketInfo, prefix string) string {
	best := ""
	for _, b := range buckets {
		if !strings.HasPrefix(b.ID, prefix) {
			continue
		}
		if best == "" || b.ID < best {
			best = b.ID
		}
	}
	return best
}
