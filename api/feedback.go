package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightdesk/internal/service/feedback"
	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	service feedback.FeedbackUseCase
}

func NewFeedbackHandler(service feedback.FeedbackUseCase) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

func (h *FeedbackHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.submit)
}

func (h *FeedbackHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.list)
}

func (h *FeedbackHandler) submit(c *gin.Context) {
	var input feedback.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	if id, ok := currentUserID(c); ok {
		input.UserID = &id
	}
	f, err := h.service.Submit(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *FeedbackHandler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
