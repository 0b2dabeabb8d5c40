package notify

import (
	"context"

	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
)

// LogNotifier writes the link to the log instead of sending it. Development only.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier logs through l, or the global logger when l is nil
func NewLogNotifier(l *logger.Logger) *LogNotifier {
	return &LogNotifier{log: l}
}

func (n *LogNotifier) SendMagicLink(_ context.Context, link MagicLink) error {
	fields := []logger.Field{
		logger.F("email", link.Email),
		logger.F("url", link.URL),
		logger.F("expires_at", link.ExpiresAt),
	}
	if n.log != nil {
		n.log.Info("Magic link", fields...)
	} else {
		logger.Info("Magic link", fields...)
	}
	return nil
}
