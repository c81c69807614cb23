package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/service"
	"kultura.id/engagehub/pkg/response"
)

type ChallengeHandler struct {
	service service.ChallengeService
}

func NewChallengeHandler(service service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{service: service}
}

func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	var req dto.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	challenge, err := h.service.CreateChallenge(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, challenge)
}

func (h *ChallengeHandler) GetChallenge(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("challenge_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	challenge, err := h.service.GetChallenge(c.Request.Context(), challengeID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

func (h *ChallengeHandler) ListByCircle(c *gin.Context) {
	circleID, err := uuid.Parse(c.Param("circle_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid circle id"})
		return
	}

	challenges, err := h.service.ListByCircle(c.Request.Context(), circleID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": challenges})
}

func (h *ChallengeHandler) DeleteChallenge(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("challenge_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteChallenge(c.Request.Context(), userID, challengeID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "challenge deleted"})
}

func (h *ChallengeHandler) SearchChallenges(c *gin.Context) {
	query := c.Query("q")

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	docs, err := h.service.SearchChallenges(query, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": docs})
}

func (h *ChallengeHandler) JoinChallenge(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("challenge_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	participation, err := h.service.JoinChallenge(c.Request.Context(), userID, challengeID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, participation)
}

func (h *ChallengeHandler) ListMyParticipations(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	participations, err := h.service.ListMyParticipations(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": participations})
}

func (h *ChallengeHandler) GetStatus(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("challenge_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	status, err := h.service.GetStatus(c.Request.Context(), userID, challengeID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
