package gmail

import (
	"mailsort/internal/models"
)

// Email holds what the classifier cares about from one Gmail message, plus
// the identifiers and headers the labeling side needs.
type Email struct {
	ID      string
	Sender  string
	Subject string
	Snippet string
	Headers map[string]string
}

// Message converts to the classifier's input record.
func (e Email) Message() models.Message {
	return models.Message{
		Sender:  e.Sender,
		Subject: e.Subject,
		Snippet: e.Snippet,
	}
}

// prettyNames maps Gmail's system category labels to the display names the
// classifier uses.
var prettyNames = map[string]string{
	"CATEGORY_PERSONAL":   "Primary",
	"CATEGORY_SOCIAL":     "Social",
	"CATEGORY_PROMOTIONS": "Promotions",
	"CATEGORY_UPDATES":    "Updates",
	"CATEGORY_FORUMS":     "Forums",
}

// PrettyLabel converts a raw Gmail label name into a display name.
// User-defined labels pass through unchanged.
func PrettyLabel(raw string) string {
	if pretty, ok := prettyNames[raw]; ok {
		return pretty
	}
	return raw
}

// RawLabel is the inverse of PrettyLabel for the known category names.
func RawLabel(pretty string) (string, bool) {
	for raw, p := range prettyNames {
		if p == pretty {
			return raw, true
		}
	}
	return "", false
}
