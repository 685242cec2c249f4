package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/types"
)

type ConversationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, conversation *types.Conversation) (*types.Conversation, error)
	GetByID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*types.Conversation, error)
	// GetAllWithOwner joins each conversation to its owning user for the
	// admin view.
	GetAllWithOwner(ctx context.Context, tx *gorm.DB) ([]*types.Conversation, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: baseLog.With("repo", "ConversationRepo")}
}

func (cr *conversationRepo) Create(ctx context.Context, tx *gorm.DB, conversation *types.Conversation) (*types.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

func (cr *conversationRepo) GetByID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*types.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.Conversation
	if err := transaction.WithContext(ctx).
		Where("id = ?", conversationID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *conversationRepo) GetAllWithOwner(ctx context.Context, tx *gorm.DB) ([]*types.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Conversation
	if err := transaction.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *conversationRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Conversation{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
