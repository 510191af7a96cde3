package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/quocanhngo/stillalive/internal/service"
)

// ContactHandler handles emergency contact endpoints
type ContactHandler struct {
	contacts *service.ContactService
}

func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// List godoc
// @Summary List emergency contacts
// @Tags Contacts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.ContactListResponse
// @Router /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ContactListResponse{Contacts: contacts})
}

// Create godoc
// @Summary Add an emergency contact (max 3)
// @Description With the SMS channel the contact receives a confirmation link and is not alerted until they confirm.
// @Tags Contacts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.ContactRequest true "Contact"
// @Success 201 {object} model.EmergencyContact
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	var req model.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	contact, err := h.contacts.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// Update godoc
// @Summary Update an emergency contact
// @Tags Contacts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param body body model.ContactRequest true "Contact"
// @Success 200 {object} model.EmergencyContact
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /contacts/{id} [patch]
func (h *ContactHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid contact ID"})
		return
	}

	var req model.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	contact, err := h.contacts.Update(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// Delete godoc
// @Summary Remove an emergency contact
// @Tags Contacts
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid contact ID"})
		return
	}

	if err := h.contacts.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Contact removed"})
}

// Confirm godoc
// @Summary Confirm an SMS emergency contact
// @Tags Contacts
// @Produce json
// @Param token query string true "Confirmation token"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 410 {object} model.ErrorResponse
// @Router /contacts/confirm [get]
func (h *ContactHandler) Confirm(c *gin.Context) {
	result, err := h.contacts.Confirm(c.Request.Context(), c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "You're confirmed as an emergency contact"
	if result == service.AlreadyConfirmed {
		msg = "You're already confirmed"
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: msg})
}

// TestAlert godoc
// @Summary Send a [TEST] emergency alert to every contact
// @Tags Contacts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.TestAlertResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /contacts/test-alert [post]
func (h *ContactHandler) TestAlert(c *gin.Context) {
	resp, err := h.contacts.TestAlert(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
