package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kultura.id/engagehub/internal/model"
	"kultura.id/engagehub/internal/repository"
	"kultura.id/engagehub/internal/service"
)

func setupHandlerTest(t *testing.T) (*gorm.DB, *SubmissionHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Circle{},
		&model.CircleParticipation{},
		&model.Challenge{},
		&model.ChallengeParticipation{},
		&model.Submission{},
		&model.PointsLedgerEntry{},
		&model.UserStats{},
	))

	submissionRepo := repository.NewSubmissionRepository(db)
	reviewSvc := service.NewReviewService(submissionRepo, nil, nil, nil, 0)
	return db, NewSubmissionHandler(reviewSvc)
}

// asUser fakes the auth middleware for a known user.
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	}
}

func seedWorkflow(t *testing.T, db *gorm.DB) (user model.User, reviewer model.User, challenge model.Challenge) {
	t.Helper()

	tenant := model.Tenant{Name: "tenant-" + uuid.NewString()}
	require.NoError(t, db.Create(&tenant).Error)

	user = model.User{
		Username: "u-" + uuid.NewString(), Email: uuid.NewString() + "@example.com",
		PasswordHash: "x", TenantID: &tenant.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	reviewer = model.User{
		Username: "m-" + uuid.NewString(), Email: uuid.NewString() + "@example.com",
		PasswordHash: "x", TenantID: &tenant.ID,
	}
	require.NoError(t, db.Create(&reviewer).Error)

	circle := model.Circle{TenantID: tenant.ID, Name: "c", CreatedBy: user.ID}
	require.NoError(t, db.Create(&circle).Error)
	require.NoError(t, db.Create(&model.CircleParticipation{UserID: user.ID, CircleID: circle.ID}).Error)

	challenge = model.Challenge{CircleID: circle.ID, Title: "t", Points: 50, CreatedBy: user.ID}
	require.NoError(t, db.Create(&challenge).Error)
	require.NoError(t, db.Create(&model.ChallengeParticipation{
		UserID: user.ID, ChallengeID: challenge.ID, Status: model.ParticipationPending,
	}).Error)

	return user, reviewer, challenge
}

func TestSubmissionHandler_Submit(t *testing.T) {
	db, h := setupHandlerTest(t)
	user, _, challenge := seedWorkflow(t, db)

	router := gin.New()
	router.POST("/submissions", asUser(user.ID), h.Submit)

	body, _ := json.Marshal(gin.H{
		"challenge_id": challenge.ID.String(),
		"file_ref":     "https://cdn.example.com/p.jpg",
	})
	req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var sub model.Submission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
	assert.Equal(t, model.SubmissionPending, sub.Status)
	assert.Equal(t, user.ID, sub.UserID)

	// A second submission while the first is pending conflicts.
	req = httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmissionHandler_Submit_Validation(t *testing.T) {
	db, h := setupHandlerTest(t)
	user, _, _ := seedWorkflow(t, db)

	router := gin.New()
	router.POST("/submissions", asUser(user.ID), h.Submit)

	body, _ := json.Marshal(gin.H{"challenge_id": "not-a-uuid"})
	req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandler_ApproveOnce(t *testing.T) {
	db, h := setupHandlerTest(t)
	user, reviewer, challenge := seedWorkflow(t, db)

	router := gin.New()
	router.POST("/submissions", asUser(user.ID), h.Submit)
	router.PUT("/submissions/:submission_id/approve", asUser(reviewer.ID), h.Approve)
	router.PUT("/submissions/:submission_id/reject", asUser(reviewer.ID), h.Reject)

	body, _ := json.Marshal(gin.H{
		"challenge_id": challenge.ID.String(),
		"file_ref":     "https://cdn.example.com/p.jpg",
	})
	req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var sub model.Submission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))

	approveURL := fmt.Sprintf("/submissions/%s/approve", sub.ID)
	req = httptest.NewRequest(http.MethodPut, approveURL, bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The decision is spent; both repeat decisions conflict.
	req = httptest.NewRequest(http.MethodPut, approveURL, bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	rejectURL := fmt.Sprintf("/submissions/%s/reject", sub.ID)
	req = httptest.NewRequest(http.MethodPut, rejectURL, bytes.NewReader([]byte(`{"feedback":"late"}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	var stats model.UserStats
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&stats).Error)
	assert.Equal(t, 50, stats.TotalPoints)
}

func TestSubmissionHandler_ListPending(t *testing.T) {
	db, h := setupHandlerTest(t)
	user, reviewer, challenge := seedWorkflow(t, db)

	router := gin.New()
	router.POST("/submissions", asUser(user.ID), h.Submit)
	router.GET("/submissions/pending", asUser(reviewer.ID), h.ListPending)

	body, _ := json.Marshal(gin.H{
		"challenge_id": challenge.ID.String(),
		"file_ref":     "https://cdn.example.com/p.jpg",
	})
	req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/submissions/pending?sort=newest", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Items []json.RawMessage `json:"items"`
		Total int64             `json:"total"`
		Page  int               `json:"page"`
		Limit int               `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.EqualValues(t, 1, list.Total)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)
}
