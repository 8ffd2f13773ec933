package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/artfolio/artfolio-backend/internal/models"
)

type fakeAlertSender struct {
	mu   sync.Mutex
	sent map[string][][]models.Report
	fail bool
}

func newFakeAlertSender() *fakeAlertSender {
	return &fakeAlertSender{sent: make(map[string][][]models.Report)}
}

func (f *fakeAlertSender) SendSLAAlertEmail(tier string, reports []models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.sent[tier] = append(f.sent[tier], reports)
	return nil
}

func (f *fakeAlertSender) batches(tier string) [][]models.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[tier]
}

func (f *fakeAlertSender) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func newMonitor(t *testing.T) (*SLAMonitor, *fakeAlertSender, *ReportService, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	cfg := testConfig()
	reports := NewReportService(db, nil, cfg.Moderation.SLAWindow)
	sender := newFakeAlertSender()
	monitor := NewSLAMonitor(reports, sender, cfg.Moderation)

	return monitor, sender, reports, db
}

func TestSweepMarksBreachedAndAlertsByTier(t *testing.T) {
	monitor, sender, _, db := newMonitor(t)

	target := createTestUser(t, db, "target", models.UserTypeArtist)
	a := createTestUser(t, db, "a", models.UserTypeBuyer)
	b := createTestUser(t, db, "b", models.UserTypeBuyer)
	c := createTestUser(t, db, "c", models.UserTypeBuyer)

	overdue := createTestReport(t, db, a, target, models.ReportStatusPending, time.Now().Add(-time.Hour))
	urgent := createTestReport(t, db, b, target, models.ReportStatusPending, time.Now().Add(30*time.Minute))
	warning := createTestReport(t, db, c, target, models.ReportStatusUnderReview, time.Now().Add(3*time.Hour))

	monitor.Sweep()

	assert.True(t, reportByID(t, db, overdue.ID).SLABreached)

	urgentBatches := sender.batches(TierUrgent)
	require.Len(t, urgentBatches, 1)
	require.Len(t, urgentBatches[0], 1)
	assert.Equal(t, urgent.ID, urgentBatches[0][0].ID)

	warningBatches := sender.batches(TierWarning)
	require.Len(t, warningBatches, 1)
	require.Len(t, warningBatches[0], 1)
	assert.Equal(t, warning.ID, warningBatches[0][0].ID)
}

func TestSweepDeduplicatesAlerts(t *testing.T) {
	monitor, sender, _, db := newMonitor(t)

	target := createTestUser(t, db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, db, "reporter", models.UserTypeBuyer)

	createTestReport(t, db, reporter, target, models.ReportStatusPending, time.Now().Add(30*time.Minute))

	monitor.Sweep()
	monitor.Sweep()
	monitor.Sweep()

	assert.Len(t, sender.batches(TierUrgent), 1)
}

func TestWarningEscalatesToUrgent(t *testing.T) {
	monitor, sender, _, db := newMonitor(t)

	target := createTestUser(t, db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, db, "reporter", models.UserTypeBuyer)

	report := createTestReport(t, db, reporter, target, models.ReportStatusPending, time.Now().Add(3*time.Hour))

	monitor.Sweep()
	require.Len(t, sender.batches(TierWarning), 1)
	assert.Empty(t, sender.batches(TierUrgent))

	// Time passes, the same report slides into the urgent window.
	require.NoError(t, db.Model(report).
		Update("sla_deadline", time.Now().Add(20*time.Minute)).Error)

	monitor.Sweep()
	require.Len(t, sender.batches(TierUrgent), 1)
	// The warning alert is not repeated.
	assert.Len(t, sender.batches(TierWarning), 1)
}

func TestFailedAlertRetriesNextSweep(t *testing.T) {
	monitor, sender, _, db := newMonitor(t)

	target := createTestUser(t, db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, db, "reporter", models.UserTypeBuyer)

	createTestReport(t, db, reporter, target, models.ReportStatusPending, time.Now().Add(30*time.Minute))

	sender.setFail(true)
	monitor.Sweep()
	assert.Empty(t, sender.batches(TierUrgent))
	assert.Equal(t, 0, monitor.alertedCount())

	sender.setFail(false)
	monitor.Sweep()
	assert.Len(t, sender.batches(TierUrgent), 1)
}

func TestReconcileDropsClosedReports(t *testing.T) {
	monitor, sender, _, db := newMonitor(t)

	target := createTestUser(t, db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, db, "reporter", models.UserTypeBuyer)

	report := createTestReport(t, db, reporter, target, models.ReportStatusPending, time.Now().Add(30*time.Minute))

	monitor.Sweep()
	require.Len(t, sender.batches(TierUrgent), 1)
	assert.Equal(t, 1, monitor.alertedCount())

	require.NoError(t, db.Model(report).
		Update("status", models.ReportStatusResolved).Error)

	monitor.Sweep()
	assert.Equal(t, 0, monitor.alertedCount())
}

func TestStartAndStop(t *testing.T) {
	monitor, sender, _, db := newMonitor(t)
	monitor.cfg.MonitorInterval = 10 * time.Millisecond

	target := createTestUser(t, db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, db, "reporter", models.UserTypeBuyer)
	createTestReport(t, db, reporter, target, models.ReportStatusPending, time.Now().Add(30*time.Minute))

	monitor.Start()
	time.Sleep(50 * time.Millisecond)
	monitor.Stop()

	// The immediate sweep fired and dedup kept it to a single alert.
	assert.Len(t, sender.batches(TierUrgent), 1)
}
