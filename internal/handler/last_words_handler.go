package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/quocanhngo/stillalive/internal/service"
)

type LastWordsHandler struct {
	lastWords *service.LastWordsService
}

func NewLastWordsHandler(lastWords *service.LastWordsService) *LastWordsHandler {
	return &LastWordsHandler{lastWords: lastWords}
}

// Get godoc
// @Summary Get last words
// @Tags Last Words
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.LastWordsResponse
// @Router /last-words [get]
func (h *LastWordsHandler) Get(c *gin.Context) {
	resp, err := h.lastWords.Get(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Save last words and their delivery delay (36, 48 or 72 hours)
// @Tags Last Words
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.UpdateLastWordsRequest true "Last words"
// @Success 200 {object} model.LastWordsResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /last-words [put]
func (h *LastWordsHandler) Update(c *gin.Context) {
	var req model.UpdateLastWordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.lastWords.Update(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Clear the last words message
// @Tags Last Words
// @Security BearerAuth
// @Success 200 {object} model.SuccessResponse
// @Router /last-words [delete]
func (h *LastWordsHandler) Delete(c *gin.Context) {
	if err := h.lastWords.Delete(c.Request.Context(), currentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Last words cleared"})
}

// TestSend godoc
// @Summary Email yourself a [TEST] copy of your last words
// @Tags Last Words
// @Security BearerAuth
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /last-words/test-send [post]
func (h *LastWordsHandler) TestSend(c *gin.Context) {
	if err := h.lastWords.TestSend(c.Request.Context(), currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Test email sent"})
}
