package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/repos"
	"github.com/pashuai/pashuai-backend/internal/types"
)

type UserStats struct {
	TotalUsers int64 `json:"totalUsers"`
	AdminUsers int64 `json:"adminUsers"`
}

type MessageStats struct {
	TotalMessages     int64 `json:"totalMessages"`
	UserMessages      int64 `json:"userMessages"`
	AssistantMessages int64 `json:"assistantMessages"`
}

type Stats struct {
	Users              UserStats    `json:"users"`
	Messages           MessageStats `json:"messages"`
	TotalConversations int64        `json:"totalConversations"`
}

// AdminService backs the dashboard views. Each call is a fresh read; there is
// no caching of aggregate state.
type AdminService interface {
	GetAllUsers(ctx context.Context) ([]*types.User, error)
	GetAllConversations(ctx context.Context) ([]*types.Conversation, error)
	GetAllMessages(ctx context.Context) ([]*types.Message, error)
	GetStats(ctx context.Context) (*Stats, error)
}

type adminService struct {
	db               *gorm.DB
	log              *logger.Logger
	userRepo         repos.UserRepo
	conversationRepo repos.ConversationRepo
	messageRepo      repos.MessageRepo
}

func NewAdminService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	conversationRepo repos.ConversationRepo,
	messageRepo repos.MessageRepo,
) AdminService {
	return &adminService{
		db:               db,
		log:              log.With("service", "AdminService"),
		userRepo:         userRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

func (s *adminService) GetAllUsers(ctx context.Context) ([]*types.User, error) {
	users, err := s.userRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *adminService) GetAllConversations(ctx context.Context) ([]*types.Conversation, error) {
	conversations, err := s.conversationRepo.GetAllWithOwner(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

func (s *adminService) GetAllMessages(ctx context.Context) ([]*types.Message, error) {
	messages, err := s.messageRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (s *adminService) GetStats(ctx context.Context) (*Stats, error) {
	totalUsers, err := s.userRepo.Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	adminUsers, err := s.userRepo.AdminCount(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	totalMessages, err := s.messageRepo.Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	userMessages, err := s.messageRepo.CountByRole(ctx, nil, types.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to count user messages: %w", err)
	}
	assistantMessages, err := s.messageRepo.CountByRole(ctx, nil, types.RoleAssistant)
	if err != nil {
		return nil, fmt.Errorf("failed to count assistant messages: %w", err)
	}
	totalConversations, err := s.conversationRepo.Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}
	return &Stats{
		Users:              UserStats{TotalUsers: totalUsers, AdminUsers: adminUsers},
		Messages:           MessageStats{TotalMessages: totalMessages, UserMessages: userMessages, AssistantMessages: assistantMessages},
		TotalConversations: totalConversations,
	}, nil
}
