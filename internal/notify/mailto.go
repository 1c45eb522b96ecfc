// Package notify composes the admin settlement notice. Delivery is a
// mailto deep link handed to the user's mail client, not programmatic mail:
// message-in, best-effort, no acknowledgment.
package notify

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notice carries the identifying fields of a purchase awaiting manual
// settlement.
type Notice struct {
	Account   string
	Quantity  decimal.Decimal
	TotalDue  decimal.Decimal
	Reference string
}

// MailtoNotifier builds mailto links addressed to the desk administrator.
type MailtoNotifier struct {
	adminEmail   string
	adminAddress string
	logger       *zap.Logger
}

// NewMailtoNotifier creates a notifier for the given admin identities.
func NewMailtoNotifier(adminEmail, adminAddress string, logger *zap.Logger) *MailtoNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailtoNotifier{
		adminEmail:   adminEmail,
		adminAddress: adminAddress,
		logger:       logger,
	}
}

// Link returns the mailto deep link for the notice.
func (n *MailtoNotifier) Link(notice Notice) string {
	subject := fmt.Sprintf("GLDC purchase confirmation (ref %s)", notice.Reference)
	body := fmt.Sprintf(
		"Account: %s\nQuantity: %s GLDC\nTotal due: $%s\nPay to: %s\nSettlement reference: %s\n",
		notice.Account,
		notice.Quantity.String(),
		notice.TotalDue.StringFixed(2),
		n.adminAddress,
		notice.Reference,
	)

	values := url.Values{}
	values.Set("subject", subject)
	values.Set("body", body)

	// mailto queries use %20 for spaces, not '+'
	query := values.Encode()
	return "mailto:" + n.adminEmail + "?" + queryEscapeSpaces(query)
}

// NotifyPurchase logs the composed link. Failure here is invisible to the
// caller; the ledger never blocks on or retries this handoff.
func (n *MailtoNotifier) NotifyPurchase(notice Notice) {
	n.logger.Info("settlement notice composed",
		zap.String("reference", notice.Reference),
		zap.String("admin", n.adminEmail),
		zap.String("link", n.Link(notice)))
}

func queryEscapeSpaces(encoded string) string {
	out := make([]byte, 0, len(encoded))
	for i := 0; i < len(encoded); i++ {
		if encoded[i] == '+' {
			out = append(out, '%', '2', '0')
			continue
		}
		out = append(out, encoded[i])
	}
	return string(out)
}
