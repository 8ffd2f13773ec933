package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/artfolio/artfolio-backend/internal/config"
	"github.com/artfolio/artfolio-backend/internal/models"
)

func newReportService(t *testing.T) (*ReportService, *testDeps) {
	t.Helper()

	db := setupTestDB(t)
	cfg := testConfig()
	notifications := NewNotificationService(db, cfg)
	svc := NewReportService(db, notifications, cfg.Moderation.SLAWindow)

	return svc, &testDeps{db: db, cfg: cfg, notifications: notifications}
}

type testDeps struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
}

func TestSubmitImageReport(t *testing.T) {
	svc, deps := newReportService(t)

	artist := createTestUser(t, deps.db, "artist", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)
	image := createTestImage(t, deps.db, artist, "sunset")

	report, err := svc.Submit(SubmitReportInput{
		ReporterID:  reporter.ID,
		TargetType:  models.ReportTargetImage,
		TargetID:    image.ID,
		Reason:      models.ReportReasonCopyright,
		Description: "stolen from my portfolio",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Equal(t, artist.ID, report.TargetUserID)
	require.NotNil(t, report.TargetImageID)
	assert.Equal(t, image.ID, *report.TargetImageID)
	assert.False(t, report.SLABreached)

	// Deadline is exactly creation + the configured window.
	assert.Equal(t, report.CreatedAt.Add(24*time.Hour), report.SLADeadline)

	// Snapshot captures the displayable fields and the filter verdict.
	assert.Equal(t, "sunset", report.ContentSnapshot["title"])
	assert.Contains(t, report.ContentSnapshot, "filter")
}

func TestSubmitUserReport(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)

	report, err := svc.Submit(SubmitReportInput{
		ReporterID: reporter.ID,
		TargetType: models.ReportTargetUser,
		TargetID:   target.ID,
		Reason:     models.ReportReasonHarassment,
	})
	require.NoError(t, err)

	assert.Equal(t, target.ID, report.TargetUserID)
	assert.Nil(t, report.TargetImageID)
	assert.Equal(t, "target", report.ContentSnapshot["username"])
}

func TestSubmitSelfReportForbidden(t *testing.T) {
	svc, deps := newReportService(t)

	artist := createTestUser(t, deps.db, "artist", models.UserTypeArtist)
	image := createTestImage(t, deps.db, artist, "selfie")

	_, err := svc.Submit(SubmitReportInput{
		ReporterID: artist.ID,
		TargetType: models.ReportTargetImage,
		TargetID:   image.ID,
		Reason:     models.ReportReasonSpam,
	})
	var forbiddenErr *ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
}

func TestSubmitInvalidReason(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)

	_, err := svc.Submit(SubmitReportInput{
		ReporterID: reporter.ID,
		TargetType: models.ReportTargetUser,
		TargetID:   target.ID,
		Reason:     "because",
	})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestSubmitMissingTarget(t *testing.T) {
	svc, deps := newReportService(t)

	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)

	_, err := svc.Submit(SubmitReportInput{
		ReporterID: reporter.ID,
		TargetType: models.ReportTargetImage,
		TargetID:   uuid.New(),
		Reason:     models.ReportReasonSpam,
	})
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestSubmitDuplicateSuppressed(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)

	input := SubmitReportInput{
		ReporterID: reporter.ID,
		TargetType: models.ReportTargetUser,
		TargetID:   target.ID,
		Reason:     models.ReportReasonHarassment,
	}

	first, err := svc.Submit(input)
	require.NoError(t, err)

	_, err = svc.Submit(input)
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)

	// Once the earlier report is closed the same reporter may report again.
	require.NoError(t, deps.db.Model(first).
		Update("status", models.ReportStatusResolved).Error)

	_, err = svc.Submit(input)
	assert.NoError(t, err)
}

func TestSetStatusTransitions(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)
	admin := createTestUser(t, deps.db, "admin", models.UserTypeAdmin)

	report := createTestReport(t, deps.db, reporter, target, models.ReportStatusPending, time.Now().Add(24*time.Hour))

	updated, err := svc.SetStatus(report.ID, models.ReportStatusUnderReview, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusUnderReview, updated.Status)
	assert.Nil(t, updated.ResolvedAt)

	updated, err = svc.SetStatus(report.ID, models.ReportStatusResolved, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	require.NotNil(t, updated.ResolvedByAdminID)
	assert.Equal(t, admin.ID, *updated.ResolvedByAdminID)

	// Terminal states are final.
	_, err = svc.SetStatus(report.ID, models.ReportStatusPending, admin.ID)
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestSetStatusInvalid(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)
	admin := createTestUser(t, deps.db, "admin", models.UserTypeAdmin)

	report := createTestReport(t, deps.db, reporter, target, models.ReportStatusPending, time.Now().Add(24*time.Hour))

	_, err := svc.SetStatus(report.ID, "escalated", admin.ID)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.SetStatus(uuid.New(), models.ReportStatusResolved, admin.ID)
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestMarkBreached(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)
	other := createTestUser(t, deps.db, "other", models.UserTypeBuyer)

	overdue := createTestReport(t, deps.db, reporter, target, models.ReportStatusPending, time.Now().Add(-time.Hour))
	onTime := createTestReport(t, deps.db, other, target, models.ReportStatusUnderReview, time.Now().Add(6*time.Hour))
	closed := createTestReport(t, deps.db, reporter, target, models.ReportStatusResolved, time.Now().Add(-2*time.Hour))

	count, err := svc.MarkBreached()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.True(t, reportByID(t, deps.db, overdue.ID).SLABreached)
	assert.False(t, reportByID(t, deps.db, onTime.ID).SLABreached)
	// Terminal reports never flip, no matter how old the deadline.
	assert.False(t, reportByID(t, deps.db, closed.ID).SLABreached)

	// A second sweep finds nothing new.
	count, err = svc.MarkBreached()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAtRiskWindowAndOrdering(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	a := createTestUser(t, deps.db, "a", models.UserTypeBuyer)
	b := createTestUser(t, deps.db, "b", models.UserTypeBuyer)
	c := createTestUser(t, deps.db, "c", models.UserTypeBuyer)

	soon := createTestReport(t, deps.db, a, target, models.ReportStatusPending, time.Now().Add(30*time.Minute))
	later := createTestReport(t, deps.db, b, target, models.ReportStatusUnderReview, time.Now().Add(3*time.Hour))
	createTestReport(t, deps.db, c, target, models.ReportStatusPending, time.Now().Add(10*time.Hour)) // outside window
	createTestReport(t, deps.db, a, target, models.ReportStatusResolved, time.Now().Add(time.Hour))   // terminal

	atRisk, err := svc.AtRisk(4 * time.Hour)
	require.NoError(t, err)
	require.Len(t, atRisk, 2)
	assert.Equal(t, soon.ID, atRisk[0].ID)
	assert.Equal(t, later.ID, atRisk[1].ID)
}

func TestGetReportWithRelated(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)
	other := createTestUser(t, deps.db, "other", models.UserTypeBuyer)

	main := createTestReport(t, deps.db, reporter, target, models.ReportStatusPending, time.Now().Add(24*time.Hour))
	createTestReport(t, deps.db, other, target, models.ReportStatusResolved, time.Now().Add(-time.Hour))
	createTestReport(t, deps.db, other, target, models.ReportStatusPending, time.Now().Add(20*time.Hour))

	view, related, err := svc.GetReport(main.ID)
	require.NoError(t, err)
	assert.Equal(t, main.ID, view.ID)
	assert.Len(t, related, 2)
	for _, r := range related {
		assert.NotEqual(t, main.ID, r.ID)
		assert.Equal(t, target.ID, r.TargetUserID)
	}
}

func TestGetAdminReportsFilters(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)
	other := createTestUser(t, deps.db, "other", models.UserTypeBuyer)

	createTestReport(t, deps.db, reporter, target, models.ReportStatusPending, time.Now().Add(2*time.Hour))
	createTestReport(t, deps.db, other, target, models.ReportStatusResolved, time.Now().Add(-time.Hour))

	pending := models.ReportStatusPending
	views, total, err := svc.GetAdminReports(AdminReportFilter{
		Params: PaginationParams{Page: 1, Limit: 20},
		Status: &pending,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, models.ReportStatusPending, views[0].Status)
	assert.True(t, views[0].SLAAtRisk)
	assert.Greater(t, views[0].SLATimeRemainingSeconds, int64(0))
}

func TestGetMyReports(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)
	other := createTestUser(t, deps.db, "other", models.UserTypeBuyer)

	createTestReport(t, deps.db, reporter, target, models.ReportStatusPending, time.Now().Add(24*time.Hour))
	createTestReport(t, deps.db, other, target, models.ReportStatusPending, time.Now().Add(24*time.Hour))

	reports, total, err := svc.GetMyReports(reporter.ID, PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, reports, 1)
	assert.Equal(t, reporter.ID, reports[0].ReporterID)
}

func TestGetStats(t *testing.T) {
	svc, deps := newReportService(t)

	target := createTestUser(t, deps.db, "target", models.UserTypeArtist)
	reporter := createTestUser(t, deps.db, "reporter", models.UserTypeBuyer)
	other := createTestUser(t, deps.db, "other", models.UserTypeBuyer)

	createTestReport(t, deps.db, reporter, target, models.ReportStatusPending, time.Now().Add(2*time.Hour))
	createTestReport(t, deps.db, other, target, models.ReportStatusDismissed, time.Now().Add(-time.Hour))

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[models.ReportStatusPending])
	assert.Equal(t, int64(1), stats.ByStatus[models.ReportStatusDismissed])
	assert.Equal(t, int64(2), stats.ByReason[models.ReportReasonHarassment])
	assert.Equal(t, int64(1), stats.SLAAtRisk)
	assert.Equal(t, int64(2), stats.CreatedLast24h)
}
