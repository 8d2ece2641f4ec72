package formatter

import (
	"encoding/csv"
	"os"

	"github.com/timegrain/timegrain/internal/core/reconcile"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(result *reconcile.Result) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	headers := []string{"Start", "End", "Duration", "App", "Title", "URL", "Browser", "Fingerprint"}
	if err := w.Write(headers); err != nil {
		return err
	}

	rows := rowsFromResult(result)
	for i, row := range rows {
		record := []string{
			row.Start,
			row.End,
			row.Duration,
			row.App,
			row.Title,
			row.URL,
			row.Browser,
			result.Events[i].Fingerprint(),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}
