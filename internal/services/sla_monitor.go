// internal/services/sla_monitor.go
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/artfolio/artfolio-backend/internal/config"
	"github.com/artfolio/artfolio-backend/internal/models"
)

// Alert tiers, by time remaining until the SLA deadline.
const (
	TierUrgent  = "urgent"
	TierWarning = "warning"
)

// AlertSender delivers a batched SLA alert for one tier.
// *NotificationService is the production implementation.
type AlertSender interface {
	SendSLAAlertEmail(tier string, reports []models.Report) error
}

// SLAMonitor periodically sweeps the report queue: it marks overdue reports
// as breached and emails the moderation team about reports approaching their
// deadline. Alerts are deduplicated per (tier, report) so a report alerts at
// most once per tier while it stays open; the escalation from warning to
// urgent is a separate alert.
type SLAMonitor struct {
	reports *ReportService
	alerts  AlertSender
	cfg     config.ModerationConfig

	mu      sync.Mutex
	alerted map[string]uuid.UUID

	stop chan struct{}
	done chan struct{}
}

func NewSLAMonitor(reports *ReportService, alerts AlertSender, cfg config.ModerationConfig) *SLAMonitor {
	return &SLAMonitor{
		reports: reports,
		alerts:  alerts,
		cfg:     cfg,
		alerted: make(map[string]uuid.UUID),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start runs the sweep loop in a goroutine until Stop is called. An error in
// one sweep is logged and the ticker keeps going.
func (m *SLAMonitor) Start() {
	go func() {
		defer close(m.done)

		ticker := time.NewTicker(m.cfg.MonitorInterval)
		defer ticker.Stop()

		logrus.WithField("interval", m.cfg.MonitorInterval).Info("SLA monitor started")

		// First sweep immediately so a restart doesn't wait a full interval.
		m.Sweep()

		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-m.stop:
				logrus.Info("SLA monitor stopped")
				return
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight sweep to finish.
func (m *SLAMonitor) Stop() {
	close(m.stop)
	<-m.done
}

// Sweep runs one monitoring pass.
func (m *SLAMonitor) Sweep() {
	if breached, err := m.reports.MarkBreached(); err != nil {
		logrus.WithError(err).Error("SLA sweep: failed to mark breached reports")
	} else if breached > 0 {
		logrus.WithField("count", breached).Warn("SLA sweep: reports breached their deadline")
	}

	atRisk, err := m.reports.AtRisk(m.cfg.WarningWindow)
	if err != nil {
		logrus.WithError(err).Error("SLA sweep: failed to fetch at-risk reports")
		return
	}

	urgent, warning := m.partition(atRisk)

	if err := m.alertTier(TierUrgent, urgent); err != nil {
		logrus.WithError(err).Error("SLA sweep: failed to send urgent alert")
	}
	if err := m.alertTier(TierWarning, warning); err != nil {
		logrus.WithError(err).Error("SLA sweep: failed to send warning alert")
	}

	if err := m.reconcile(); err != nil {
		logrus.WithError(err).Error("SLA sweep: failed to reconcile alert state")
	}
}

// partition splits at-risk reports into tiers, skipping reports already
// alerted at that tier. AtRisk returns deadline-ascending order, which both
// tiers preserve.
func (m *SLAMonitor) partition(reports []models.Report) (urgent, warning []models.Report) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, report := range reports {
		tier := TierWarning
		if report.SLATimeRemaining(now) <= m.cfg.UrgentWindow {
			tier = TierUrgent
		}
		if _, seen := m.alerted[alertKey(tier, report.ID)]; seen {
			continue
		}
		if tier == TierUrgent {
			urgent = append(urgent, report)
		} else {
			warning = append(warning, report)
		}
	}

	return urgent, warning
}

// alertTier sends one batched email for the tier. Dedup keys are recorded
// only after a successful send, so a failed delivery retries next sweep.
func (m *SLAMonitor) alertTier(tier string, reports []models.Report) error {
	if len(reports) == 0 {
		return nil
	}

	if err := m.alerts.SendSLAAlertEmail(tier, reports); err != nil {
		return err
	}

	m.mu.Lock()
	for _, report := range reports {
		m.alerted[alertKey(tier, report.ID)] = report.ID
	}
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{"tier": tier, "count": len(reports)}).
		Info("SLA sweep: alert sent")
	return nil
}

// reconcile drops dedup keys whose report has been closed, so the map does
// not grow without bound and a reopened target can alert again.
func (m *SLAMonitor) reconcile() error {
	m.mu.Lock()
	idSet := make(map[uuid.UUID]struct{}, len(m.alerted))
	for _, id := range m.alerted {
		idSet[id] = struct{}{}
	}
	m.mu.Unlock()

	if len(idSet) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	terminal, err := m.reports.TerminalReportIDs(ids)
	if err != nil {
		return err
	}
	if len(terminal) == 0 {
		return nil
	}

	closed := make(map[uuid.UUID]struct{}, len(terminal))
	for _, id := range terminal {
		closed[id] = struct{}{}
	}

	m.mu.Lock()
	for key, id := range m.alerted {
		if _, ok := closed[id]; ok {
			delete(m.alerted, key)
		}
	}
	m.mu.Unlock()

	return nil
}

// alertedCount is a test hook.
func (m *SLAMonitor) alertedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerted)
}

func alertKey(tier string, id uuid.UUID) string {
	return fmt.Sprintf("%s-%s", tier, id)
}
