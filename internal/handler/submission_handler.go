package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pv "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/service"
	"kultura.id/engagehub/pkg/response"
	"kultura.id/engagehub/pkg/validator"
)

type SubmissionHandler struct {
	service service.ReviewService
}

func NewSubmissionHandler(service service.ReviewService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve pv.ValidationErrors
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(ve)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	sub, err := h.service.Submit(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	sub, err := h.service.GetSubmission(c.Request.Context(), submissionID, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *SubmissionHandler) Withdraw(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Withdraw(c.Request.Context(), submissionID, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "submission withdrawn"})
}

func (h *SubmissionHandler) ListPending(c *gin.Context) {
	var filter dto.PendingSubmissionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.service.ListPending(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *SubmissionHandler) Approve(c *gin.Context) {
	submissionID, reviewerID, feedback, ok := h.bindReview(c)
	if !ok {
		return
	}

	sub, err := h.service.Approve(c.Request.Context(), submissionID, reviewerID, feedback)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *SubmissionHandler) Reject(c *gin.Context) {
	submissionID, reviewerID, feedback, ok := h.bindReview(c)
	if !ok {
		return
	}

	sub, err := h.service.Reject(c.Request.Context(), submissionID, reviewerID, feedback)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *SubmissionHandler) bindReview(c *gin.Context) (submissionID, reviewerID uuid.UUID, feedback string, ok bool) {
	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return uuid.Nil, uuid.Nil, "", false
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return uuid.Nil, uuid.Nil, "", false
	}

	reviewerID, err = response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, "", false
	}

	return submissionID, reviewerID, req.Feedback, true
}
