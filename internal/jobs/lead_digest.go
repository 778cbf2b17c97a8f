// Package jobs runs scheduled background work.
package jobs

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/silkloom/backend/internal/models"
	"gorm.io/gorm"
)

// DigestMailer delivers the daily lead digest to the operator.
type DigestMailer interface {
	SendAdminNotification(subject, htmlBody string) error
}

// LeadDigest emails the operator a daily summary of leads that have not
// converted to a purchase yet.
type LeadDigest struct {
	db        *gorm.DB
	mailer    DigestMailer
	scheduler *gocron.Scheduler
}

// NewLeadDigest creates the digest job
func NewLeadDigest(db *gorm.DB, mailer DigestMailer) *LeadDigest {
	return &LeadDigest{
		db:        db,
		mailer:    mailer,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start schedules the digest to run daily
func (j *LeadDigest) Start() {
	if _, err := j.scheduler.Every(1).Day().At("06:00").Do(j.Run); err != nil {
		log.Printf("scheduling lead digest failed: %v", err)
		return
	}
	j.scheduler.StartAsync()
}

// Stop halts the scheduler
func (j *LeadDigest) Stop() {
	j.scheduler.Stop()
}

// Run builds and sends one digest. Exported so operators can trigger it
// manually.
func (j *LeadDigest) Run() {
	var leads []models.Lead
	if err := j.db.Where("is_converted = ?", false).
		Order("promo_code, created_at DESC").
		Find(&leads).Error; err != nil {
		log.Printf("lead digest query failed: %v", err)
		return
	}

	if len(leads) == 0 {
		log.Printf("lead digest: no unconverted leads, skipping send")
		return
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h3>Unconverted Leads (%d)</h3><table border=\"1\">", len(leads)))
	b.WriteString("<tr><th>Promo Code</th><th>Customer</th><th>Name</th><th>Phone</th><th>Email</th><th>Registered</th></tr>")
	for _, l := range leads {
		b.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			l.PromoCode, l.CustomerUsername, l.FullName, l.Phone, l.Email,
			l.CreatedAt.Format("2006-01-02"),
		))
	}
	b.WriteString("</table>")

	subject := fmt.Sprintf("Daily Lead Digest: %d unconverted", len(leads))
	if err := j.mailer.SendAdminNotification(subject, b.String()); err != nil {
		log.Printf("lead digest send failed: %v", err)
		return
	}
	log.Printf("lead digest sent: %d leads", len(leads))
}
