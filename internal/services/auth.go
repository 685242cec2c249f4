package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pashuai/pashuai-backend/internal/apierr"
	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/repos"
	"github.com/pashuai/pashuai-backend/internal/types"
)

const (
	bcryptCost = 12
	tokenTTL   = 7 * 24 * time.Hour
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// JWTClaims embeds the user id as subject plus the contact identifiers the
// account was registered with.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, email, phone, password, name string) (*types.User, string, error)
	Login(ctx context.Context, emailOrPhone, password string) (*types.User, string, error)
	IssueToken(user *types.User) (string, error)
	VerifyToken(tokenString string) (*JWTClaims, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	TokenTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string) AuthService {
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
	}
}

// HashPassword is a one-way transform with a per-call random salt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword fails closed: any malformed hash reads as a mismatch.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (as *authService) Register(ctx context.Context, email, phone, password, name string) (*types.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	phone = strings.TrimSpace(phone)
	name = strings.TrimSpace(name)

	if err := validateRegistration(email, phone, password); err != nil {
		return nil, "", err
	}

	if email != "" {
		exists, err := as.userRepo.EmailExists(ctx, nil, email)
		if err != nil {
			return nil, "", fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, "", apierr.Validation("email is already registered")
		}
	}
	if phone != "" {
		exists, err := as.userRepo.PhoneExists(ctx, nil, phone)
		if err != nil {
			return nil, "", fmt.Errorf("failed to check phone: %w", err)
		}
		if exists {
			return nil, "", apierr.Validation("phone is already registered")
		}
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &types.User{
		ID:       uuid.New(),
		Password: hashed,
		Name:     name,
	}
	if email != "" {
		user.Email = &email
	}
	if phone != "" {
		user.Phone = &phone
	}

	if _, err := as.userRepo.Create(ctx, nil, user); err != nil {
		// Duplicate contact raced past the existence check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apierr.Validation("email or phone is already registered")
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := as.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("User registered", "user_id", user.ID.String())
	return user, token, nil
}

func (as *authService) Login(ctx context.Context, emailOrPhone, password string) (*types.User, string, error) {
	emailOrPhone = strings.TrimSpace(emailOrPhone)
	if emailOrPhone == "" || password == "" {
		return nil, "", apierr.Validation("emailOrPhone and password are required")
	}

	user, err := as.userRepo.GetByEmailOrPhone(ctx, nil, strings.ToLower(emailOrPhone))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apierr.Unauthenticated("invalid credentials")
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !VerifyPassword(password, user.Password) {
		return nil, "", apierr.Unauthenticated("invalid credentials")
	}

	token, err := as.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("User logged in", "user_id", user.ID.String())
	return user, token, nil
}

func (as *authService) IssueToken(user *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	if user.Email != nil {
		claims.Email = *user.Email
	}
	if user.Phone != nil {
		claims.Phone = *user.Phone
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (as *authService) VerifyToken(tokenString string) (*JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthenticated, fmt.Errorf("invalid or expired token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, apierr.Unauthenticated("invalid or expired token")
	}
	return claims, nil
}

func (as *authService) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (as *authService) TokenTTL() time.Duration {
	return tokenTTL
}

func validateRegistration(email, phone, password string) error {
	if email == "" && phone == "" {
		return apierr.Validation("either email or phone number is required")
	}
	if email != "" && !emailPattern.MatchString(email) {
		return apierr.Validation("invalid email address")
	}
	if phone != "" && (len(phone) < 10 || len(phone) > 20) {
		return apierr.Validation("phone number must be 10-20 characters")
	}
	if len(password) < 6 {
		return apierr.Validation("password must be at least 6 characters")
	}
	return nil
}
