// Package notify delivers magic links to users.
package notify

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// MagicLink is one sign-in link addressed to an email
type MagicLink struct {
	Email     string
	Token     string
	URL       string
	ExpiresAt time.Time
}

// Notifier sends magic links. Implementations must be safe for concurrent use.
type Notifier interface {
	SendMagicLink(ctx context.Context, link MagicLink) error
}

// VerifyURL builds the web app link that redeems token.
func VerifyURL(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/auth/verify?token=" + url.QueryEscape(token)
}
