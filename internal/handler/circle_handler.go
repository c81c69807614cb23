package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/service"
	"kultura.id/engagehub/pkg/response"
)

type CircleHandler struct {
	service service.MembershipService
}

func NewCircleHandler(service service.MembershipService) *CircleHandler {
	return &CircleHandler{service: service}
}

func (h *CircleHandler) CreateCircle(c *gin.Context) {
	var req dto.CreateCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	circle, err := h.service.CreateCircle(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, circle)
}

func (h *CircleHandler) ListCircles(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	circles, err := h.service.ListCircles(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": circles})
}

func (h *CircleHandler) JoinCircle(c *gin.Context) {
	circleID, err := uuid.Parse(c.Param("circle_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid circle id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	participation, err := h.service.JoinCircle(c.Request.Context(), userID, circleID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, participation)
}

func (h *CircleHandler) LeaveCircle(c *gin.Context) {
	participationID, err := uuid.Parse(c.Param("participation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participation id"})
		return
	}

	if err := h.service.LeaveCircle(c.Request.Context(), participationID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "left circle"})
}

func (h *CircleHandler) ListMembers(c *gin.Context) {
	circleID, err := uuid.Parse(c.Param("circle_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid circle id"})
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), circleID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": members})
}
