package formatter

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/timegrain/timegrain/internal/core/reconcile"
)

// JSONFormatter prints the full result, warnings included, as indented JSON.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(result *reconcile.Result) error {
	data, err := sonic.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
