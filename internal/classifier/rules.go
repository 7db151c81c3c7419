package classifier

import (
	"context"
	"net/mail"
	"strings"

	"mailsort/internal/models"
)

// Known social networking and media-sharing domains.
var socialDomains = map[string]bool{
	"facebook.com":  true,
	"twitter.com":   true,
	"linkedin.com":  true,
	"instagram.com": true,
	"pinterest.com": true,
	"snapchat.com":  true,
	"tiktok.com":    true,
	"tumblr.com":    true,
	"reddit.com":    true,
	"discord.com":   true,
	"slack.com":     true,
	"meetup.com":    true,
}

// Free email providers: senders here are treated as personal accounts.
var freeEmailProviders = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"outlook.com":    true,
	"hotmail.com":    true,
	"live.com":       true,
	"msn.com":        true,
	"aol.com":        true,
	"icloud.com":     true,
	"protonmail.com": true,
	"yandex.com":     true,
	"zoho.com":       true,
}

var promotionKeywords = []string{
	"sale", "deal", "discount", "offer", "promo", "coupon",
	"subscribe", "subscription", "save", "free", "limited time",
	"special", "clearance", "bargain", "order now", "unlimited",
}

var updatesKeywords = []string{
	"invoice", "receipt", "order", "confirmation", "confirm",
	"shipping", "shipment", "tracking", "itinerary", "bill",
	"payment", "statement", "notice", "reminder", "ticket",
	"appointment", "reservation", "booking", "schedule",
}

var forumKeywords = []string{
	"digest", "discussion", "forum", "mailing list", "newsletter",
	"community", "thread", "re: [", "[list]", "[forum]",
}

var socialKeywords = []string{
	"new follower", "friend request", "mentioned you", "tagged you",
	"commented", "liked your", "shared", "join us",
}

var marketingDomainSuffixes = []string{
	"mailchimp.com", "sendgrid.net", "emarketing.com",
}

// RuleClassifier is the keyword-and-domain fallback classifier. It needs no
// model, no network and no initialization; rules fire in a fixed order
// (social, promotions, updates, forums, work) with Primary as the default,
// so its output is fully deterministic.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// extractDomain returns the lower-cased domain of a From header value,
// tolerating display-name forms like `Friend <friend@example.com>`.
func extractDomain(sender string) string {
	addr := sender
	if parsed, err := mail.ParseAddress(sender); err == nil {
		addr = parsed.Address
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(strings.Trim(addr[at+1:], "<>")))
}

func hasAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func listIDHeader(headers map[string]string) string {
	for _, key := range []string{"List-Id", "List-id", "List-ID"} {
		if v, ok := headers[key]; ok {
			return v
		}
	}
	return ""
}

// ClassifyMessage applies the rules to one message. headers may be nil; it is
// only consulted for the List-Id forum check, which plain Message fields
// cannot express.
func (r *RuleClassifier) ClassifyMessage(msg models.Message, headers map[string]string) string {
	domain := extractDomain(msg.Sender)

	if socialDomains[domain] {
		return "Social"
	}
	if hasAnyKeyword(msg.Subject, socialKeywords) || hasAnyKeyword(msg.Snippet, socialKeywords) {
		return "Social"
	}

	if hasAnyKeyword(msg.Subject, promotionKeywords) || hasAnyKeyword(msg.Snippet, promotionKeywords) {
		return "Promotions"
	}
	for _, suffix := range marketingDomainSuffixes {
		if strings.HasSuffix(domain, suffix) {
			return "Promotions"
		}
	}

	if hasAnyKeyword(msg.Subject, updatesKeywords) || hasAnyKeyword(msg.Snippet, updatesKeywords) {
		return "Updates"
	}

	if headers != nil && listIDHeader(headers) != "" {
		return "Forums"
	}
	if hasAnyKeyword(msg.Subject, forumKeywords) || hasAnyKeyword(msg.Snippet, forumKeywords) {
		return "Forums"
	}

	if domain != "" && !freeEmailProviders[domain] {
		return "Work"
	}

	return "Primary"
}

// Classify adapts ClassifyMessage to the Labeler interface. Rule hits carry
// no similarity notion, so the score is always 1.
func (r *RuleClassifier) Classify(ctx context.Context, msg models.Message) (models.ClassificationResult, error) {
	return models.ClassificationResult{Label: r.ClassifyMessage(msg, nil), Score: 1}, nil
}

func (r *RuleClassifier) ClassifyBatch(ctx context.Context, msgs []models.Message) ([]models.ClassificationResult, error) {
	results := make([]models.ClassificationResult, len(msgs))
	for i, msg := range msgs {
		results[i] = models.ClassificationResult{Label: r.ClassifyMessage(msg, nil), Score: 1}
	}
	return results, nil
}

var _ Labeler = (*RuleClassifier)(nil)
