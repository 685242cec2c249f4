package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pashuai/pashuai-backend/internal/apierr"
	"github.com/pashuai/pashuai-backend/internal/requestdata"
	"github.com/pashuai/pashuai-backend/internal/services"
)

const tokenCookieName = "token"

type AuthHandler struct {
	authService services.AuthService
	production  bool
}

func NewAuthHandler(authService services.AuthService, production bool) *AuthHandler {
	return &AuthHandler{authService: authService, production: production}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	user, token, err := ah.authService.Register(c.Request.Context(), req.Email, req.Phone, req.Password, req.Name)
	if err != nil {
		RespondError(c, err)
		return
	}
	ah.setSessionCookie(c, token)
	RespondOK(c, gin.H{"user": user, "token": token})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		EmailOrPhone string `json:"emailOrPhone"`
		Password     string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	user, token, err := ah.authService.Login(c.Request.Context(), req.EmailOrPhone, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	ah.setSessionCookie(c, token)
	RespondOK(c, gin.H{"user": user, "token": token})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookieName, "", -1, "/", "", ah.production, true)
	RespondOK(c, gin.H{"message": "logged out successfully"})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, apierr.Unauthenticated("authentication required"))
		return
	}
	user, err := ah.authService.GetUserByID(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, user)
}

func (ah *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(ah.authService.TokenTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookieName, token, maxAge, "/", "", ah.production, true)
}
