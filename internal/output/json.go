package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format writes the activity as it was decoded from the API, after
// filtering. A missing user encodes as {"user": null}.
func (f *JSONFormatter) Format(r Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	if r.Activity == nil {
		return encoder.Encode(struct {
			User any `json:"user"`
		}{})
	}
	return encoder.Encode(r.Activity)
}
