package alert

import (
	"context"
	"fmt"

	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"go.uber.org/zap"
)

// Kind classifies operator alerts by the failure they report. Severity is
// implied: a stuck reveal means a secret is public while funds are still
// claimable by anyone, so it outranks everything else.
type Kind string

const (
	// KindRefundStuck means a refund claim keeps getting rejected after the
	// escrow expired. Funds are safe behind the timelock but locked up.
	KindRefundStuck Kind = "refund_stuck"

	// KindRevealStuck means the secret is already public on one chain and
	// the reveal on the counter chain keeps failing. Highest severity.
	KindRevealStuck Kind = "reveal_stuck"

	// KindMonitorTimeout means an escrow could not be resolved to any
	// terminal status within the monitoring horizon.
	KindMonitorTimeout Kind = "monitor_timeout"
)

// Alert is one operator-facing notification. Alerts never replace retries,
// they run alongside them.
type Alert struct {
	Kind     Kind
	SwapID   string
	Chain    swap.Chain
	Attempts int
	Message  string
	Err      error
}

func (a Alert) String() string {
	msg := fmt.Sprintf("[%s] swap %s chain %s: %s", a.Kind, a.SwapID, a.Chain, a.Message)
	if a.Attempts > 0 {
		msg = fmt.Sprintf("%s (attempt %d)", msg, a.Attempts)
	}
	if a.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, a.Err)
	}
	return msg
}

// Notifier delivers alerts to an operational channel. Implementations must
// be safe for concurrent use; delivery failures are the caller's to log,
// never to retry into the swap path.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// ZapNotifier writes alerts to the process log. It is the fallback channel
// and always configured, so no alert is ever dropped silently.
type ZapNotifier struct {
	logger *zap.Logger
}

func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	return &ZapNotifier{logger: logger.With(zap.String("service", "alert"))}
}

func (n *ZapNotifier) Notify(_ context.Context, alert Alert) error {
	fields := []zap.Field{
		zap.String("kind", string(alert.Kind)),
		zap.String("swap-id", alert.SwapID),
		zap.String("chain", string(alert.Chain)),
		zap.Int("attempts", alert.Attempts),
		zap.Error(alert.Err),
	}
	n.logger.Error(alert.Message, fields...)
	return nil
}

// Notifiers fans an alert out to every configured channel. A failing
// channel does not stop the others.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, alert Alert) error {
	var last error
	for _, n := range ns {
		if err := n.Notify(ctx, alert); err != nil {
			last = err
		}
	}
	return last
}
