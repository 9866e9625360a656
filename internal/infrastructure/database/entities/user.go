package entities

import (
	"time"

	"loveslices-server/internal/domain/user"
)

// User represents the database schema for users.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID        string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name            string  `gorm:"type:varchar(128);not null"`
	Email           string  `gorm:"type:varchar(256);uniqueIndex;not null"`
	PartnerPublicID *string `gorm:"type:varchar(64);index"`
}

// TableName specifies the table name for User.
func (User) TableName() string {
	return "users"
}

// EtoD converts database entity to domain model.
func (u *User) EtoD() *user.User {
	return &user.User{
		ID:              u.ID,
		PublicID:        u.PublicID,
		Name:            u.Name,
		Email:           u.Email,
		PartnerPublicID: u.PartnerPublicID,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// NewSchemaUser creates a database entity from domain model.
func NewSchemaUser(u *user.User) *User {
	return &User{
		ID:              u.ID,
		PublicID:        u.PublicID,
		Name:            u.Name,
		Email:           u.Email,
		PartnerPublicID: u.PartnerPublicID,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
