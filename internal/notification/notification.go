// Package notification handles sending notifications to external services.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/containrrr/shoutrrr"

	"github.com/zorak1103/dockdeck/internal/config"
	"github.com/zorak1103/dockdeck/internal/operation"
)

// Notifier reports operation outcomes via Shoutrrr
type Notifier struct {
	enabled      bool
	failuresOnly bool
	shoutrrrURL  string
	send         func(url, message string) error
	now          func() time.Time
}

var _ operation.Observer = (*Notifier)(nil)

// NewNotifier initializes a Shoutrrr-based notification client from config.
func NewNotifier(cfg *config.Config) (*Notifier, error) {
	if !cfg.Notification.Enabled {
		return &Notifier{enabled: false}, nil
	}

	url := strings.TrimSpace(cfg.Notification.ShoutrrrURL)
	if url == "" {
		return &Notifier{enabled: false}, fmt.Errorf("notification enabled but shoutrrr_url not configured: provide URL in format 'service://credentials' (e.g., slack://token@channel, discord://token@webhookid)")
	}

	return &Notifier{
		enabled:      true,
		failuresOnly: cfg.Notification.FailuresOnly,
		shoutrrrURL:  url,
		send:         shoutrrr.Send,
		now:          time.Now,
	}, nil
}

// IsEnabled reports whether notifications are configured and active.
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// ObserveOperation implements operation.Observer. Delivery problems are
// logged and never change the outcome.
func (n *Notifier) ObserveOperation(ctx context.Context, req operation.Request, outcome operation.Outcome) {
	if !n.enabled {
		return
	}
	if n.failuresOnly && outcome.Success {
		return
	}

	if err := n.send(n.shoutrrrURL, n.format(req, outcome)); err != nil {
		logging.L(ctx).Warnf("Notification failed to send via %s (container: %s, operation: %s): %s.",
			serviceType(n.shoutrrrURL), req.ContainerID, req.Kind, err)
	}
}

func (n *Notifier) format(req operation.Request, outcome operation.Outcome) string {
	var sb strings.Builder

	if outcome.Success {
		sb.WriteString("✅ dockdeck operation succeeded\n")
	} else {
		sb.WriteString("⚠️  dockdeck operation failed\n")
	}
	sb.WriteString(fmt.Sprintf("📅 Time: %s\n", n.now().Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("📦 Container: %s\n", req.ContainerID))
	sb.WriteString(fmt.Sprintf("🔧 Operation: %s\n", req.Kind))
	sb.WriteString("\n")
	sb.WriteString(outcome.Message)

	return sb.String()
}

// serviceType extracts the scheme, e.g. "slack://..." -> "slack".
func serviceType(url string) string {
	if idx := strings.Index(url, "://"); idx > 0 {
		return url[:idx]
	}
	return "unknown"
}
