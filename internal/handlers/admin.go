package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pashuai/pashuai-backend/internal/services"
)

type AdminHandler struct {
	adminService services.AdminService
}

func NewAdminHandler(adminService services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (ah *AdminHandler) GetUsers(c *gin.Context) {
	users, err := ah.adminService.GetAllUsers(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, users)
}

func (ah *AdminHandler) GetConversations(c *gin.Context) {
	conversations, err := ah.adminService.GetAllConversations(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, conversations)
}

func (ah *AdminHandler) GetMessages(c *gin.Context) {
	messages, err := ah.adminService.GetAllMessages(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, messages)
}

func (ah *AdminHandler) GetStats(c *gin.Context) {
	stats, err := ah.adminService.GetStats(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, stats)
}
