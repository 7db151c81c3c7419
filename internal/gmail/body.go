package gmail

import (
	"encoding/base64"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"google.golang.org/api/gmail/v1"
)

// extractBody walks the MIME tree and returns the best plain-text rendering
// of the message body: text/plain parts win, text/html parts are stripped to
// text as a fallback.
func extractBody(payload *gmail.MessagePart) string {
	var plain, htmlBody []string
	collectParts(payload, &plain, &htmlBody)
	if len(plain) > 0 {
		return strings.Join(plain, "\n")
	}
	if len(htmlBody) > 0 {
		return htmlToText(htmlBody[0])
	}
	return ""
}

func collectParts(part *gmail.MessagePart, plain, htmlBody *[]string) {
	if part == nil {
		return
	}
	if len(part.Parts) > 0 {
		for _, sub := range part.Parts {
			collectParts(sub, plain, htmlBody)
		}
		return
	}
	if part.Body == nil || part.Body.Data == "" {
		return
	}
	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		log.Warnf("Unable to decode message part (%s): %v", part.MimeType, err)
		return
	}
	switch part.MimeType {
	case "text/plain":
		*plain = append(*plain, string(data))
	case "text/html":
		*htmlBody = append(*htmlBody, string(data))
	}
}

var ignoreHTMLTags = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
}

// htmlToText strips markup and returns the visible text, whitespace
// collapsed. Unparseable input falls back to the raw string.
func htmlToText(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		log.Warnf("Unable to parse HTML body, using raw text: %v", err)
		return raw
	}

	var b strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && ignoreHTMLTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			traverse(child)
		}
	}
	traverse(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}
