package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CaptionRecord is a heterogeneous caption object as returned by the
// generation endpoint. Different model backends name the text field
// differently, so it stays schemaless until display time.
type CaptionRecord map[string]interface{}

// captionTextFields is the fixed priority order for resolving display
// text from a caption record.
var captionTextFields = [...]string{"content", "caption", "text", "caption_text"}

// CaptionText resolves the display text of a caption record: the first
// non-blank string among the known text fields, else a full structural
// dump of the record so nothing ever renders blank.
func CaptionText(record CaptionRecord) string {
	for _, field := range captionTextFields {
		if value, ok := record[field].(string); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	if dump, err := json.Marshal(record); err == nil {
		return string(dump)
	}
	return fmt.Sprintf("%v", map[string]interface{}(record))
}
