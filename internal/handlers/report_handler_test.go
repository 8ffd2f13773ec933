package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/artfolio/artfolio-backend/internal/config"
	"github.com/artfolio/artfolio-backend/internal/models"
	"github.com/artfolio/artfolio-backend/internal/services"
)

type handlerFixture struct {
	db     *gorm.DB
	router *gin.Engine
}

// asUser stubs the auth middleware: requests carry the acting user via the
// X-Test-User header instead of a signed token.
func asUser(c *gin.Context) {
	if id := c.GetHeader("X-Test-User"); id != "" {
		c.Set("user_id", id)
	}
	c.Next()
}

func setupHandlerTest(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Image{}, &models.Report{}, &models.Block{},
		&models.Notification{}, &models.AdminNotification{}, &models.AuditLog{},
	))

	cfg := &config.Config{
		Moderation: config.ModerationConfig{SLAWindow: 24 * time.Hour},
		Frontend:   config.FrontendConfig{BaseURL: "http://localhost:3000"},
	}
	notifications := services.NewNotificationService(db, cfg)
	reports := services.NewReportService(db, notifications, cfg.Moderation.SLAWindow)
	blocks := services.NewBlockService(db)

	reportHandler := NewReportHandler(reports)
	blockHandler := NewBlockHandler(blocks)

	r := gin.New()
	r.Use(asUser)
	r.POST("/reports/image/:imageId", reportHandler.ReportImage)
	r.POST("/reports/user/:userId", reportHandler.ReportUser)
	r.GET("/reports/reasons", reportHandler.GetReportReasons)
	r.POST("/blocks/:userId", blockHandler.BlockUser)
	r.DELETE("/blocks/:userId", blockHandler.UnblockUser)

	return &handlerFixture{db: db, router: r}
}

func (f *handlerFixture) do(t *testing.T, method, path string, userID uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("X-Test-User", userID.String())
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *handlerFixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@artfolio.test",
		UserType: models.UserTypeArtist,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func TestReportUserEndpoint(t *testing.T) {
	f := setupHandlerTest(t)

	reporter := f.createUser(t, "reporter")
	target := f.createUser(t, "target")

	body := gin.H{"reason": "harassment", "description": "threatening messages"}

	w := f.do(t, http.MethodPost, "/reports/user/"+target.ID.String(), reporter.ID, body)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Report models.Report `json:"report"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, models.ReportStatusPending, resp.Data.Report.Status)

	// Duplicate submission conflicts.
	w = f.do(t, http.MethodPost, "/reports/user/"+target.ID.String(), reporter.ID, body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReportSelfForbiddenEndpoint(t *testing.T) {
	f := setupHandlerTest(t)

	user := f.createUser(t, "narcissist")

	w := f.do(t, http.MethodPost, "/reports/user/"+user.ID.String(), user.ID,
		gin.H{"reason": "spam"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportInvalidReasonEndpoint(t *testing.T) {
	f := setupHandlerTest(t)

	reporter := f.createUser(t, "reporter")
	target := f.createUser(t, "target")

	w := f.do(t, http.MethodPost, "/reports/user/"+target.ID.String(), reporter.ID,
		gin.H{"reason": "vibes"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportUnauthenticatedEndpoint(t *testing.T) {
	f := setupHandlerTest(t)

	target := f.createUser(t, "target")

	w := f.do(t, http.MethodPost, "/reports/user/"+target.ID.String(), uuid.Nil,
		gin.H{"reason": "spam"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportReasonsEndpoint(t *testing.T) {
	f := setupHandlerTest(t)

	w := f.do(t, http.MethodGet, "/reports/reasons", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "copyright_infringement")
}

func TestBlockEndpoints(t *testing.T) {
	f := setupHandlerTest(t)

	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	w := f.do(t, http.MethodPost, "/blocks/"+bob.ID.String(), alice.ID, gin.H{"reason": "spam"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Blocking twice conflicts.
	w = f.do(t, http.MethodPost, "/blocks/"+bob.ID.String(), alice.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Self-block is invalid.
	w = f.do(t, http.MethodPost, "/blocks/"+alice.ID.String(), alice.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/blocks/"+bob.ID.String(), alice.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Unblocking again is a 404.
	w = f.do(t, http.MethodDelete, "/blocks/"+bob.ID.String(), alice.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
