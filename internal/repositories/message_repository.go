package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quickplate_backend/internal/models"
)

// MessageRepository defines the interface for support ticket database operations.
type MessageRepository interface {
	CreateMessage(executor SQLExecutor, message *models.Message) (int64, error)
	GetMessageByID(id int64) (*models.Message, error)
	GetMessages(status *string, page, pageSize int) ([]models.Message, int, error)
	ReplyAndClose(executor SQLExecutor, id int64, reply string) error
}

type messageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) CreateMessage(executor SQLExecutor, message *models.Message) (int64, error) {
	query := `INSERT INTO messages (name, email, subject, body, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		message.Name, message.Email, message.Subject, message.Body,
		models.MessageStatusOpen, currentTime, currentTime,
	).Scan(&message.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating message: %v", ErrDatabaseError, err)
	}
	return message.ID, nil
}

func (r *messageRepository) GetMessageByID(id int64) (*models.Message, error) {
	message := &models.Message{}
	query := `SELECT id, name, email, subject, body, status, reply, created_at, updated_at
	          FROM messages
	          WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&message.ID, &message.Name, &message.Email, &message.Subject, &message.Body,
		&message.Status, &message.Reply, &message.CreatedAt, &message.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting message by ID %d: %v", ErrDatabaseError, id, err)
	}
	return message, nil
}

func (r *messageRepository) GetMessages(status *string, page, pageSize int) ([]models.Message, int, error) {
	messages := []models.Message{}
	totalCount := 0

	query := `SELECT id, name, email, subject, body, status, reply, created_at, updated_at,
	                 COUNT(*) OVER() as total_count
	          FROM messages`
	var args []interface{}
	argCounter := 1
	if status != nil && *status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argCounter)
		args = append(args, *status)
		argCounter++
	}
	query += " ORDER BY created_at DESC"
	if pageSize > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCounter)
		args = append(args, pageSize)
		argCounter++
		if page > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argCounter)
			args = append(args, (page-1)*pageSize)
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying messages: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Message
		err := rows.Scan(
			&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body,
			&m.Status, &m.Reply, &m.CreatedAt, &m.UpdatedAt, &totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning message: %v", ErrDatabaseError, err)
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating message rows: %v", ErrDatabaseError, err)
	}
	return messages, totalCount, nil
}

func (r *messageRepository) ReplyAndClose(executor SQLExecutor, id int64, reply string) error {
	query := `UPDATE messages SET reply = $1, status = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, reply, models.MessageStatusClosed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: replying to message ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for message ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
