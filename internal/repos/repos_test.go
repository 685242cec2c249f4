package repos

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/types"
)

func setupTestDB(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "repos_test_*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	db, err := gorm.Open(sqlite.Open(tmpFile.Name()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.Conversation{}, &types.Message{}); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return db, log
}

func strPtr(s string) *string { return &s }

func newTestUser(email string) *types.User {
	return &types.User{
		ID:       uuid.New(),
		Email:    strPtr(email),
		Password: "not-a-real-hash",
		Name:     "Test Farmer",
	}
}

func TestUserRepoCreateAndGet(t *testing.T) {
	db, log := setupTestDB(t)
	repo := NewUserRepo(db, log)
	ctx := context.Background()

	user := newTestUser("farmer@example.com")
	if _, err := repo.Create(ctx, nil, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email == nil || *got.Email != "farmer@example.com" {
		t.Errorf("GetByID email = %v, want farmer@example.com", got.Email)
	}

	byEmail, err := repo.GetByEmailOrPhone(ctx, nil, "farmer@example.com")
	if err != nil {
		t.Fatalf("GetByEmailOrPhone by email: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("GetByEmailOrPhone id = %v, want %v", byEmail.ID, user.ID)
	}
}

func TestUserRepoGetByPhone(t *testing.T) {
	db, log := setupTestDB(t)
	repo := NewUserRepo(db, log)
	ctx := context.Background()

	user := &types.User{
		ID:       uuid.New(),
		Phone:    strPtr("9876543210"),
		Password: "not-a-real-hash",
	}
	if _, err := repo.Create(ctx, nil, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByEmailOrPhone(ctx, nil, "9876543210")
	if err != nil {
		t.Fatalf("GetByEmailOrPhone by phone: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("GetByEmailOrPhone id = %v, want %v", got.ID, user.ID)
	}

	exists, err := repo.PhoneExists(ctx, nil, "9876543210")
	if err != nil {
		t.Fatalf("PhoneExists: %v", err)
	}
	if !exists {
		t.Error("PhoneExists = false, want true")
	}
}

func TestUserRepoDuplicateEmail(t *testing.T) {
	db, log := setupTestDB(t)
	repo := NewUserRepo(db, log)
	ctx := context.Background()

	if _, err := repo.Create(ctx, nil, newTestUser("dup@example.com")); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := repo.Create(ctx, nil, newTestUser("dup@example.com"))
	if err == nil {
		t.Fatal("second Create with duplicate email succeeded, want error")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate create error = %v, want gorm.ErrDuplicatedKey", err)
	}

	count, err := repo.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count after duplicate = %d, want 1", count)
	}
}

func TestUserRepoNilContactsAreNotUnique(t *testing.T) {
	db, log := setupTestDB(t)
	repo := NewUserRepo(db, log)
	ctx := context.Background()

	// Two phone-only users must not collide on the null email column.
	for i := 0; i < 2; i++ {
		user := &types.User{
			ID:       uuid.New(),
			Phone:    strPtr(fmt.Sprintf("987654321%d", i)),
			Password: "not-a-real-hash",
		}
		if _, err := repo.Create(ctx, nil, user); err != nil {
			t.Fatalf("Create user %d: %v", i, err)
		}
	}
}

func TestUserRepoAdminCount(t *testing.T) {
	db, log := setupTestDB(t)
	repo := NewUserRepo(db, log)
	ctx := context.Background()

	admin := newTestUser("admin@example.com")
	admin.IsAdmin = true
	if _, err := repo.Create(ctx, nil, admin); err != nil {
		t.Fatalf("Create admin: %v", err)
	}
	if _, err := repo.Create(ctx, nil, newTestUser("plain@example.com")); err != nil {
		t.Fatalf("Create user: %v", err)
	}

	admins, err := repo.AdminCount(ctx, nil)
	if err != nil {
		t.Fatalf("AdminCount: %v", err)
	}
	if admins != 1 {
		t.Errorf("AdminCount = %d, want 1", admins)
	}
}

func TestConversationRepoCreateAndGet(t *testing.T) {
	db, log := setupTestDB(t)
	userRepo := NewUserRepo(db, log)
	convRepo := NewConversationRepo(db, log)
	ctx := context.Background()

	owner := newTestUser("owner@example.com")
	if _, err := userRepo.Create(ctx, nil, owner); err != nil {
		t.Fatalf("Create user: %v", err)
	}

	conversation := &types.Conversation{
		ID:       uuid.New(),
		UserID:   &owner.ID,
		Language: "hi",
	}
	if _, err := convRepo.Create(ctx, nil, conversation); err != nil {
		t.Fatalf("Create conversation: %v", err)
	}

	got, err := convRepo.GetByID(ctx, nil, conversation.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Language != "hi" {
		t.Errorf("Language = %q, want %q", got.Language, "hi")
	}
	if got.UserID == nil || *got.UserID != owner.ID {
		t.Errorf("UserID = %v, want %v", got.UserID, owner.ID)
	}

	_, err = convRepo.GetByID(ctx, nil, uuid.New())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetByID missing = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestConversationRepoGetAllWithOwner(t *testing.T) {
	db, log := setupTestDB(t)
	userRepo := NewUserRepo(db, log)
	convRepo := NewConversationRepo(db, log)
	ctx := context.Background()

	owner := newTestUser("owner@example.com")
	if _, err := userRepo.Create(ctx, nil, owner); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	if _, err := convRepo.Create(ctx, nil, &types.Conversation{ID: uuid.New(), UserID: &owner.ID, Language: "en"}); err != nil {
		t.Fatalf("Create owned conversation: %v", err)
	}
	if _, err := convRepo.Create(ctx, nil, &types.Conversation{ID: uuid.New(), Language: "en"}); err != nil {
		t.Fatalf("Create anonymous conversation: %v", err)
	}

	all, err := convRepo.GetAllWithOwner(ctx, nil)
	if err != nil {
		t.Fatalf("GetAllWithOwner: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("GetAllWithOwner returned %d conversations, want 2", len(all))
	}
	var foundOwner bool
	for _, conv := range all {
		if conv.User != nil && conv.User.ID == owner.ID {
			foundOwner = true
		}
	}
	if !foundOwner {
		t.Error("owned conversation did not preload its user")
	}
}

func TestMessageRepoOrdering(t *testing.T) {
	db, log := setupTestDB(t)
	convRepo := NewConversationRepo(db, log)
	msgRepo := NewMessageRepo(db, log)
	ctx := context.Background()

	conversation := &types.Conversation{ID: uuid.New(), Language: "en"}
	if _, err := convRepo.Create(ctx, nil, conversation); err != nil {
		t.Fatalf("Create conversation: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	const n = 7
	for i := 0; i < n; i++ {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		msg := &types.Message{
			ID:             uuid.New(),
			ConversationID: conversation.ID,
			Role:           role,
			Content:        fmt.Sprintf("turn %d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}
		if _, err := msgRepo.Create(ctx, nil, msg); err != nil {
			t.Fatalf("Create message %d: %v", i, err)
		}
	}

	history, err := msgRepo.GetByConversation(ctx, nil, conversation.ID)
	if err != nil {
		t.Fatalf("GetByConversation: %v", err)
	}
	if len(history) != n {
		t.Fatalf("GetByConversation returned %d messages, want %d", len(history), n)
	}
	for i, msg := range history {
		want := fmt.Sprintf("turn %d", i)
		if msg.Content != want {
			t.Errorf("message %d content = %q, want %q", i, msg.Content, want)
		}
	}
}

func TestMessageRepoEmptyConversation(t *testing.T) {
	db, log := setupTestDB(t)
	msgRepo := NewMessageRepo(db, log)
	ctx := context.Background()

	history, err := msgRepo.GetByConversation(ctx, nil, uuid.New())
	if err != nil {
		t.Fatalf("GetByConversation: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("GetByConversation on empty conversation returned %d messages, want 0", len(history))
	}
}

func TestMessageRepoCounts(t *testing.T) {
	db, log := setupTestDB(t)
	convRepo := NewConversationRepo(db, log)
	msgRepo := NewMessageRepo(db, log)
	ctx := context.Background()

	conversation := &types.Conversation{ID: uuid.New(), Language: "en"}
	if _, err := convRepo.Create(ctx, nil, conversation); err != nil {
		t.Fatalf("Create conversation: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := msgRepo.Create(ctx, nil, &types.Message{
			ID: uuid.New(), ConversationID: conversation.ID, Role: types.RoleUser, Content: "q",
		}); err != nil {
			t.Fatalf("Create user message: %v", err)
		}
	}
	if _, err := msgRepo.Create(ctx, nil, &types.Message{
		ID: uuid.New(), ConversationID: conversation.ID, Role: types.RoleAssistant, Content: "a",
	}); err != nil {
		t.Fatalf("Create assistant message: %v", err)
	}

	total, err := msgRepo.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 4 {
		t.Errorf("Count = %d, want 4", total)
	}
	userCount, err := msgRepo.CountByRole(ctx, nil, types.RoleUser)
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}
	if userCount != 3 {
		t.Errorf("CountByRole(user) = %d, want 3", userCount)
	}
}
