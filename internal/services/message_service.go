package services

import (
	"database/sql"
	"errors"
	"fmt"

	"quickplate_backend/internal/models"
	"quickplate_backend/internal/repositories"
)

// CreateMessageRequest is the public contact-form payload.
type CreateMessageRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// ReplyMessageRequest is the admin payload for answering a ticket.
type ReplyMessageRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// MessageService handles support tickets.
type MessageService interface {
	CreateMessage(req CreateMessageRequest) (*models.Message, error)
	GetMessages(status *string, page, pageSize int) ([]models.Message, int, error)
	GetMessageByID(messageID int64) (*models.Message, error)
	Reply(messageID int64, req ReplyMessageRequest) (*models.Message, error)
}

type messageService struct {
	messageRepo repositories.MessageRepository
	db          *sql.DB
}

// NewMessageService creates a new instance of MessageService.
func NewMessageService(messageRepo repositories.MessageRepository, db *sql.DB) MessageService {
	return &messageService{messageRepo: messageRepo, db: db}
}

func (s *messageService) CreateMessage(req CreateMessageRequest) (*models.Message, error) {
	message := &models.Message{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
		Status:  models.MessageStatusOpen,
	}
	if _, err := s.messageRepo.CreateMessage(s.db, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return message, nil
}

func (s *messageService) GetMessages(status *string, page, pageSize int) ([]models.Message, int, error) {
	messages, totalCount, err := s.messageRepo.GetMessages(status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, totalCount, nil
}

func (s *messageService) GetMessageByID(messageID int64) (*models.Message, error) {
	message, err := s.messageRepo.GetMessageByID(messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return message, nil
}

func (s *messageService) Reply(messageID int64, req ReplyMessageRequest) (*models.Message, error) {
	if err := s.messageRepo.ReplyAndClose(s.db, messageID, req.Reply); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to reply to message: %w", err)
	}
	return s.messageRepo.GetMessageByID(messageID)
}
