package formatter

import (
	"github.com/timegrain/timegrain/internal/core/model"
	"github.com/timegrain/timegrain/internal/core/reconcile"
	"github.com/timegrain/timegrain/internal/util"
)

// Formatter renders one reconciliation result to stdout.
type Formatter interface {
	Format(result *reconcile.Result) error
}

// Row is one timeline entry flattened for tabular output.
type Row struct {
	Start    string
	End      string
	Duration string
	App      string
	Title    string
	URL      string
	Browser  string
}

// rowsFromResult flattens the timeline for the table and CSV formatters.
func rowsFromResult(result *reconcile.Result) []Row {
	rows := make([]Row, 0, len(result.Events))
	for _, ev := range result.Events {
		rows = append(rows, Row{
			Start:    util.FormatMs(ev.Start),
			End:      util.FormatMs(ev.End),
			Duration: util.FormatDurationMs(ev.End - ev.Start),
			App:      model.StringOrEmpty(ev.App),
			Title:    model.StringOrEmpty(ev.Title),
			URL:      model.StringOrEmpty(ev.URL),
			Browser:  model.StringOrEmpty(ev.Browser),
		})
	}
	return rows
}
