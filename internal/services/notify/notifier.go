// Package notify wraps the email gateway with the bounded retry required by
// the purchase workflow: a sale only commits if every affiliate notification
// eventually succeeded.
package notify

import (
	"fmt"
	"log"

	"github.com/silkloom/backend/internal/services/email"
)

// Gateway sends a single sale notification without retrying.
type Gateway interface {
	SendSaleNotification(toEmail string, n email.SaleNotification) error
}

// RetryingNotifier attempts delivery up to maxAttempts times sequentially.
type RetryingNotifier struct {
	gateway     Gateway
	maxAttempts int
}

// NewRetryingNotifier creates a notifier with the given attempt budget.
// Attempts below 1 are clamped to 1.
func NewRetryingNotifier(gateway Gateway, maxAttempts int) *RetryingNotifier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingNotifier{gateway: gateway, maxAttempts: maxAttempts}
}

// NotifySale delivers one sale notification, returning nil on the first
// successful attempt. After the attempt budget is exhausted it returns an
// error wrapping the last failure; the caller must treat that as fatal for
// its enclosing transaction.
func (r *RetryingNotifier) NotifySale(toEmail string, n email.SaleNotification) error {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := r.gateway.SendSaleNotification(toEmail, n); err != nil {
			lastErr = err
			log.Printf("sale notification attempt %d/%d to %s failed: %v", attempt, r.maxAttempts, toEmail, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("sale notification to %s failed after %d attempts: %w", toEmail, r.maxAttempts, lastErr)
}
