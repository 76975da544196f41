package output

import (
	"encoding/json"

	"github.com/industrylens/industrylens/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatOverview renders an overview result as JSON.
func (f *JSONFormatter) FormatOverview(result *core.OverviewResult) (string, error) {
	if result == nil {
		return "", nil
	}
	return f.marshal(result)
}

// FormatExplanation renders an explanation result as JSON.
func (f *JSONFormatter) FormatExplanation(result *core.ExplanationResult) (string, error) {
	if result == nil {
		return "", nil
	}
	return f.marshal(result)
}

func (f *JSONFormatter) marshal(v any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
