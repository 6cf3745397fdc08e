package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID                      uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Name                    string             `gorm:"size:140" json:"name"`
	Email                   string             `gorm:"size:140;uniqueIndex;not null" json:"email"`
	PasswordHash            string             `gorm:"size:100" json:"-"`
	Role                    Role               `gorm:"type:varchar(10);not null;default:USER" json:"role"`
	EmailVerifiedAt         *time.Time         `json:"emailVerifiedAt,omitempty"`
	VerificationCode        *string            `gorm:"size:6" json:"-"`
	VerificationCodeExpires *time.Time         `json:"-"`
	PushSubscriptions       []PushSubscription `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt               time.Time          `json:"createdAt"`
	UpdatedAt               time.Time          `json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) Verified() bool { return u.EmailVerifiedAt != nil }

type PushSubscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_push_user_endpoint"`
	Endpoint  string    `gorm:"size:1024;not null;uniqueIndex:idx_push_user_endpoint"`
	Auth      string    `gorm:"size:255;not null"`
	P256dh    string    `gorm:"column:p256dh;size:255;not null"`
	CreatedAt time.Time
}

// VerificationToken backs password reset codes.
type VerificationToken struct {
	Identifier string    `gorm:"size:140;primaryKey"`
	Token      string    `gorm:"size:64;primaryKey"`
	Expires    time.Time `gorm:"not null"`
}
