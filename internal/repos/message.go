package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/types"
)

type MessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, message *types.Message) (*types.Message, error)
	// GetByConversation returns the full history in creation order. No
	// pagination: per-conversation volume is expected to stay small.
	GetByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.Message, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Message, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByRole(ctx context.Context, tx *gorm.DB, role string) (int64, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, message *types.Message) (*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if err := transaction.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (mr *messageRepo) GetByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Message
	if err := transaction.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *messageRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Message
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *messageRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (mr *messageRepo) CountByRole(ctx context.Context, tx *gorm.DB, role string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Where("role = ?", role).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
