package types

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity record. Email and phone are each optional but at least
// one is present; both are globally unique when set.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     *string   `gorm:"uniqueIndex;column:email" json:"email"`
	Phone     *string   `gorm:"uniqueIndex;column:phone" json:"phone"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	Name      string    `gorm:"column:name" json:"name"`
	IsAdmin   bool      `gorm:"not null;default:false;column:is_admin" json:"is_admin"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
