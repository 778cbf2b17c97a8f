package email

import (
	"fmt"
	"net/smtp"

	"github.com/silkloom/backend/internal/config"
)

// SaleNotification is the per-affiliate payload for a sale email.
type SaleNotification struct {
	PromoCode          string
	CustomerUsername   string
	CustomerPhone      string
	ItemsBought        int
	ItemNames          string
	TotalBill          float64
	DiscountPercentage float64
	// AffiliateAmount is round(totalBill * discountPercentage / 100).
	AffiliateAmount int64
}

// EmailService sends templated emails over SMTP. Each Send* method dispatches
// exactly one outbound email; transport failures surface to the caller and
// are never retried here.
type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	adminEmail   string
}

// NewEmailService creates a new email service from injected configuration
func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{
		smtpHost:     cfg.Host,
		smtpPort:     cfg.Port,
		smtpUsername: cfg.Username,
		smtpPassword: cfg.Password,
		fromEmail:    cfg.FromEmail,
		adminEmail:   cfg.AdminEmail,
	}
}

// SendSaleNotification emails one affiliate about a completed sale
func (s *EmailService) SendSaleNotification(toEmail string, n SaleNotification) error {
	subject := fmt.Sprintf("New Sale | Promo Code: %s", n.PromoCode)

	body := fmt.Sprintf(`
	<h2>New Sale</h2>

	<p><strong>Promo Code:</strong> %s</p>
	<p><strong>Customer:</strong> %s</p>
	<p><strong>Customer Phone:</strong> %s</p>

	<hr />

	<p><strong>Items Bought:</strong> %d</p>
	<p><strong>Item Names:</strong> %s</p>

	<hr />

	<p><strong>Total Bill:</strong> Rs. %.2f</p>
	<p><strong>Your Discount:</strong> %.0f%%</p>
	<p><strong>Your Earnings:</strong> Rs. %d</p>
	`, n.PromoCode, n.CustomerUsername, n.CustomerPhone,
		n.ItemsBought, n.ItemNames,
		n.TotalBill, n.DiscountPercentage, n.AffiliateAmount)

	return s.sendEmail(toEmail, subject, body)
}

// SendAffiliateWelcome emails a newly added affiliate their promo code details
func (s *EmailService) SendAffiliateWelcome(toEmail, promoCode, affiliateUsername string, discountPercentage float64) error {
	subject := fmt.Sprintf("Your Promo Code For This Campaign - %s", promoCode)

	body := fmt.Sprintf(`
	<h3>Welcome aboard.</h3>
	<p>You have been added as an affiliate.</p>

	<p><b>Username:</b> %s</p>
	<p><b>Promo Code:</b> %s</p>
	<p><b>Your Discount:</b> %.0f%%</p>

	<hr />
	<p>You will receive notifications whenever a sale happens.</p>
	<p>Silkloom</p>
	`, affiliateUsername, promoCode, discountPercentage)

	return s.sendEmail(toEmail, subject, body)
}

// SendAdminNotification emails the configured admin address
func (s *EmailService) SendAdminNotification(subject, htmlBody string) error {
	return s.sendEmail(s.adminEmail, subject, htmlBody)
}

// sendEmail sends an email with HTML content
func (s *EmailService) sendEmail(toEmail, subject, htmlBody string) error {
	if s.smtpHost == "" || s.smtpPort == "" || s.smtpUsername == "" || s.smtpPassword == "" {
		return fmt.Errorf("email service not configured")
	}

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	from := fmt.Sprintf("From: Silkloom <%s>\n", s.fromEmail)
	to := fmt.Sprintf("To: %s\n", toEmail)
	subjectHeader := fmt.Sprintf("Subject: %s\n", subject)

	message := []byte(from + to + subjectHeader + mime + htmlBody)

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)

	return smtp.SendMail(addr, auth, s.fromEmail, []string{toEmail}, message)
}
