package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/types"
	"github.com/pashuai/pashuai-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "pashuai", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := s.db.AutoMigrate(
		&types.User{},
		&types.Conversation{},
		&types.Message{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	// Conversation exclusively owns its messages; user references are weak.
	constraints := []string{
		`ALTER TABLE "messages" DROP CONSTRAINT IF EXISTS "fk_messages_conversation_id"`,
		`ALTER TABLE "messages"
		   ADD CONSTRAINT "fk_messages_conversation_id"
		   FOREIGN KEY ("conversation_id") REFERENCES "conversations"("id")
		   ON DELETE CASCADE`,
		`ALTER TABLE "messages" DROP CONSTRAINT IF EXISTS "fk_messages_user_id"`,
		`ALTER TABLE "messages"
		   ADD CONSTRAINT "fk_messages_user_id"
		   FOREIGN KEY ("user_id") REFERENCES "users"("id")
		   ON DELETE SET NULL`,
		`ALTER TABLE "conversations" DROP CONSTRAINT IF EXISTS "fk_conversations_user_id"`,
		`ALTER TABLE "conversations"
		   ADD CONSTRAINT "fk_conversations_user_id"
		   FOREIGN KEY ("user_id") REFERENCES "users"("id")
		   ON DELETE SET NULL`,
	}
	for _, ddl := range constraints {
		if err := s.db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("failed to configure foreign keys: %w", err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
