package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/artfolio/artfolio-backend/internal/config"
	"github.com/artfolio/artfolio-backend/internal/models"
)

// setupTestDB opens an in-memory sqlite database. A single connection is
// enforced because each sqlite :memory: connection is its own database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Image{},
		&models.Report{},
		&models.Block{},
		&models.Notification{},
		&models.AdminNotification{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Frontend:    config.FrontendConfig{BaseURL: "http://localhost:3000"},
		JWT: config.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenTTL: 1,
		},
		Moderation: config.ModerationConfig{
			SLAWindow:       24 * time.Hour,
			MonitorInterval: 15 * time.Minute,
			UrgentWindow:    time.Hour,
			WarningWindow:   4 * time.Hour,
			AlertEmail:      "moderation@artfolio.test",
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username string, userType models.UserType) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@artfolio.test",
		UserType: userType,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestImage(t *testing.T, db *gorm.DB, owner *models.User, title string) *models.Image {
	t.Helper()

	image := &models.Image{
		OwnerID:    owner.ID,
		Title:      title,
		FileURL:    "https://cdn.artfolio.test/" + title + ".png",
		StorageKey: "artwork/" + title + ".png",
		Status:     models.ImageStatusActive,
	}
	require.NoError(t, db.Create(image).Error)
	return image
}

// createTestReport inserts a report directly, bypassing Submit, so tests can
// control timestamps and status.
func createTestReport(t *testing.T, db *gorm.DB, reporter, target *models.User, status models.ReportStatus, deadline time.Time) *models.Report {
	t.Helper()

	report := &models.Report{
		ReporterID:   reporter.ID,
		TargetType:   models.ReportTargetUser,
		TargetUserID: target.ID,
		Reason:       models.ReportReasonHarassment,
		Status:       status,
		SLADeadline:  deadline,
	}
	require.NoError(t, db.Create(report).Error)
	return report
}

func reportByID(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Report {
	t.Helper()

	var report models.Report
	require.NoError(t, db.First(&report, "id = ?", id).Error)
	return &report
}
