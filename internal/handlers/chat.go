package handlers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pashuai/pashuai-backend/internal/apierr"
	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/requestdata"
	"github.com/pashuai/pashuai-backend/internal/services"
)

// maxUploadBytes caps uploaded images at 10MB; exactly 10MB passes.
const maxUploadBytes = 10 * 1024 * 1024

type ChatHandler struct {
	log         *logger.Logger
	chatService services.ChatService
}

func NewChatHandler(log *logger.Logger, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chatService: chatService}
}

func (ch *ChatHandler) CreateConversation(c *gin.Context) {
	var req struct {
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.Unauthenticated("authentication required"))
		return
	}
	conversation, err := ch.chatService.CreateConversation(c.Request.Context(), rd.UserID, req.Language)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, conversation)
}

func (ch *ChatHandler) GetMessages(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		RespondError(c, apierr.Validation("invalid conversation id"))
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.Unauthenticated("authentication required"))
		return
	}
	messages, err := ch.chatService.GetMessages(c.Request.Context(), rd.UserID, conversationID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, messages)
}

func (ch *ChatHandler) Chat(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversationId"`
		Message        string `json:"message"`
		Language       string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	if req.ConversationID == "" || req.Message == "" {
		RespondError(c, apierr.Validation("conversationId and message are required"))
		return
	}
	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		RespondError(c, apierr.Validation("invalid conversation id"))
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.Unauthenticated("authentication required"))
		return
	}
	assistantMessage, err := ch.chatService.SendMessage(c.Request.Context(), rd.UserID, conversationID, req.Message, req.Language)
	if err != nil {
		ch.log.Error("Chat failed", "error", err, "user_id", rd.UserID.String())
		RespondError(c, err)
		return
	}
	RespondOK(c, assistantMessage)
}

func (ch *ChatHandler) AnalyzeImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		RespondError(c, apierr.UploadRejected("no image file provided"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		RespondError(c, apierr.UploadRejected("image size should be less than 10MB"))
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		RespondError(c, apierr.UploadRejected("only image files are allowed"))
		return
	}

	conversationIDStr := c.PostForm("conversationId")
	if conversationIDStr == "" {
		RespondError(c, apierr.Validation("conversationId is required"))
		return
	}
	conversationID, err := uuid.Parse(conversationIDStr)
	if err != nil {
		RespondError(c, apierr.Validation("invalid conversation id"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, apierr.UploadRejected("invalid file upload"))
		return
	}
	defer file.Close()
	imageBytes, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		RespondError(c, apierr.UploadRejected("invalid file upload"))
		return
	}
	if len(imageBytes) > maxUploadBytes {
		RespondError(c, apierr.UploadRejected("image size should be less than 10MB"))
		return
	}

	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.Unauthenticated("authentication required"))
		return
	}

	message := c.PostForm("message")
	language := c.PostForm("language")
	assistantMessage, err := ch.chatService.AnalyzeImage(c.Request.Context(), rd.UserID, conversationID, imageBytes, mimeType, message, language)
	if err != nil {
		ch.log.Error("Image analysis failed", "error", err, "user_id", rd.UserID.String())
		RespondError(c, err)
		return
	}
	RespondOK(c, assistantMessage)
}
