package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/salonsuite/platform/pkg/logging"
)

// FailoverSender tries senders in order until one succeeds. Typical wiring
// is SES primary, SendGrid secondary.
type FailoverSender struct {
	senders []EmailSender
	logger  *logging.Logger
}

// NewFailoverSender builds a failover chain. Nil senders are skipped.
func NewFailoverSender(logger *logging.Logger, senders ...EmailSender) *FailoverSender {
	if logger == nil {
		logger = logging.Default()
	}
	chain := make([]EmailSender, 0, len(senders))
	for _, s := range senders {
		if s != nil {
			chain = append(chain, s)
		}
	}
	return &FailoverSender{senders: chain, logger: logger}
}

// Send tries each sender in order.
func (f *FailoverSender) Send(ctx context.Context, msg EmailMessage) error {
	if len(f.senders) == 0 {
		return errors.New("notify: no email senders configured")
	}

	var errs []error
	for i, sender := range f.senders {
		err := sender.Send(ctx, msg)
		if err == nil {
			if i > 0 {
				f.logger.Warn("notify: primary sender failed, fallback delivered", "to", msg.To, "fallback_index", i)
			}
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("notify: all %d senders failed: %w", len(f.senders), errors.Join(errs...))
}

var _ EmailSender = (*FailoverSender)(nil)
