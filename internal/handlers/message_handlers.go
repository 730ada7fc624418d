package handlers

import (
	"errors"
	"net/http"

	"quickplate_backend/internal/services"
	"quickplate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MessageHandler holds the support ticket service.
type MessageHandler struct {
	messageService services.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(ms services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: ms}
}

// CreateMessage accepts a public contact-form submission.
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req services.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	message, err := h.messageService.CreateMessage(req)
	if err != nil {
		utils.LogError(err, "CreateMessage: Error from messageService.CreateMessage")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to submit message.", "Internal error"))
		return
	}
	c.JSON(http.StatusCreated, message)
}

// GetMessages lists support tickets, optionally filtered by status.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	var query struct {
		Status   *string `form:"status"`
		Page     int     `form:"page"`
		PageSize int     `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	messages, total, err := h.messageService.GetMessages(query.Status, query.Page, query.PageSize)
	if err != nil {
		utils.LogError(err, "GetMessages: Error from messageService.GetMessages")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve messages.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages, "total": total})
}

// GetMessageByID returns a single support ticket.
func (h *MessageHandler) GetMessageByID(c *gin.Context) {
	messageID, err := utils.StrToInt64(c.Param("messageID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid message ID format.", err.Error()))
		return
	}

	message, err := h.messageService.GetMessageByID(messageID)
	if err != nil {
		utils.LogError(err, "GetMessageByID: Error from messageService.GetMessageByID")
		if errors.Is(err, services.ErrMessageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Message not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve message.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, message)
}

// ReplyMessage answers a ticket and closes it.
func (h *MessageHandler) ReplyMessage(c *gin.Context) {
	messageID, err := utils.StrToInt64(c.Param("messageID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid message ID format.", err.Error()))
		return
	}

	var req services.ReplyMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	message, err := h.messageService.Reply(messageID, req)
	if err != nil {
		utils.LogError(err, "ReplyMessage: Error from messageService.Reply")
		if errors.Is(err, services.ErrMessageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Message not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Message is already closed.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to reply to message.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, message)
}
