package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes server payloads as indented JSON, one document per call.
type JSONFormatter struct{}

// Format encodes data without HTML escaping, so messages such as
// "<token>" and query strings with '&' print as the server sent them.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
