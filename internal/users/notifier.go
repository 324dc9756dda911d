package users

import (
	"context"

	"github.com/bazaarlabs/bazaar-backend/pkg/logger"
)

// Notifier delivers account lifecycle messages. Delivery is an external
// collaborator; the default implementation only logs.
type Notifier interface {
	SendActivation(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

type logNotifier struct {
	logg *logger.Logger
}

// NewLogNotifier returns a Notifier that writes tokens to the log instead of
// sending mail. Useful in dev and as the default wiring.
func NewLogNotifier(logg *logger.Logger) Notifier {
	return &logNotifier{logg: logg}
}

func (n *logNotifier) SendActivation(ctx context.Context, email, token string) error {
	ctx = n.logg.WithFields(ctx, map[string]any{"email": email, "token": token})
	n.logg.Info(ctx, "activation requested")
	return nil
}

func (n *logNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	ctx = n.logg.WithFields(ctx, map[string]any{"email": email, "token": token})
	n.logg.Info(ctx, "password reset requested")
	return nil
}
