package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docubase/internal/app"
	"docubase/internal/transport/http/response"
)

type QueryHandler struct {
	service     *app.KnowledgeService
	defaultTopK int
}

func NewQueryHandler(service *app.KnowledgeService, defaultTopK int) *QueryHandler {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &QueryHandler{service: service, defaultTopK: defaultTopK}
}

type QueryRequest struct {
	Question   string `json:"question" binding:"required"`
	Collection string `json:"collection"`
	// TopK nil means "use the configured default"; an explicit value
	// must be positive.
	TopK *int `json:"top_k"`
}

// Ask retrieves the best-matching chunks for the question and returns
// the assembled prompt with its sources manifest.
func (h *QueryHandler) Ask(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	topK := h.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	result, err := h.service.Query(c.Request.Context(), app.QueryInput{
		Question:   req.Question,
		Collection: req.Collection,
		TopK:       topK,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidTopK):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidTopK, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUnknownCollection):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "query failed")
		}
		return
	}
	response.OK(c, result)
}
