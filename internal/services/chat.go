package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pashuai/pashuai-backend/internal/apierr"
	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/repos"
	"github.com/pashuai/pashuai-backend/internal/types"
)

// ChatService owns the conversation lifecycle: thread creation, history
// reads, and the user-turn -> advisor -> assistant-turn round trip.
type ChatService interface {
	CreateConversation(ctx context.Context, userID uuid.UUID, language string) (*types.Conversation, error)
	GetMessages(ctx context.Context, userID, conversationID uuid.UUID) ([]*types.Message, error)
	SendMessage(ctx context.Context, userID, conversationID uuid.UUID, message, language string) (*types.Message, error)
	AnalyzeImage(ctx context.Context, userID, conversationID uuid.UUID, imageBytes []byte, mimeType, message, language string) (*types.Message, error)
}

type chatService struct {
	db               *gorm.DB
	log              *logger.Logger
	conversationRepo repos.ConversationRepo
	messageRepo      repos.MessageRepo
	advisor          AdvisorService
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	conversationRepo repos.ConversationRepo,
	messageRepo repos.MessageRepo,
	advisor AdvisorService,
) ChatService {
	return &chatService{
		db:               db,
		log:              log.With("service", "ChatService"),
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		advisor:          advisor,
	}
}

func (cs *chatService) CreateConversation(ctx context.Context, userID uuid.UUID, language string) (*types.Conversation, error) {
	if language == "" {
		language = "en"
	}
	conversation := &types.Conversation{
		ID:       uuid.New(),
		UserID:   &userID,
		Language: language,
	}
	if _, err := cs.conversationRepo.Create(ctx, nil, conversation); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conversation, nil
}

func (cs *chatService) GetMessages(ctx context.Context, userID, conversationID uuid.UUID) ([]*types.Message, error) {
	if _, err := cs.loadOwnedConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	history, err := cs.messageRepo.GetByConversation(ctx, nil, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return history, nil
}

func (cs *chatService) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, message, language string) (*types.Message, error) {
	if language == "" {
		language = "en"
	}
	if _, err := cs.loadOwnedConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	// History is captured before the new turn so each turn reaches the
	// model exactly once.
	prior, err := cs.messageRepo.GetByConversation(ctx, nil, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	history := make([]HistoryEntry, 0, len(prior))
	for _, m := range prior {
		history = append(history, HistoryEntry{Role: m.Role, Content: m.Content})
	}

	if _, err := cs.messageRepo.Create(ctx, nil, &types.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         &userID,
		Role:           types.RoleUser,
		Content:        message,
	}); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	advice, err := cs.advisor.GenerateAdvice(ctx, message, history, language)
	if err != nil {
		return nil, err
	}

	// The assistant turn is an independent write: a crash between the two
	// leaves a conversation ending on the user's turn.
	assistantMessage := &types.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           types.RoleAssistant,
		Content:        advice,
	}
	if _, err := cs.messageRepo.Create(ctx, nil, assistantMessage); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}
	return assistantMessage, nil
}

func (cs *chatService) AnalyzeImage(ctx context.Context, userID, conversationID uuid.UUID, imageBytes []byte, mimeType, message, language string) (*types.Message, error) {
	if language == "" {
		language = "en"
	}
	if _, err := cs.loadOwnedConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	userContent := message
	if userContent == "" {
		userContent = "Uploaded an image for analysis"
	}
	if _, err := cs.messageRepo.Create(ctx, nil, &types.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         &userID,
		Role:           types.RoleUser,
		Content:        userContent,
	}); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	analysis, err := cs.advisor.AnalyzeImage(ctx, imageBytes, mimeType, message, language)
	if err != nil {
		return nil, err
	}

	assistantMessage := &types.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           types.RoleAssistant,
		Content:        analysis,
	}
	if _, err := cs.messageRepo.Create(ctx, nil, assistantMessage); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}
	return assistantMessage, nil
}

// loadOwnedConversation runs the ownership check: it must succeed before any
// message in the thread is read or written. Threads without an owner are open
// to any authenticated user.
func (cs *chatService) loadOwnedConversation(ctx context.Context, userID, conversationID uuid.UUID) (*types.Conversation, error) {
	conversation, err := cs.conversationRepo.GetByID(ctx, nil, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("conversation not found")
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conversation.UserID != nil && *conversation.UserID != userID {
		return nil, apierr.Forbidden("you do not have access to this conversation")
	}
	return conversation, nil
}
