package user

import (
	"time"

	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/google/uuid"
)

// User represents a user record in the database.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username  string     `gorm:"uniqueIndex;not null;size:150"`
	Email     string     `gorm:"size:255;index"`
	FirstName string     `gorm:"size:150"`
	LastName  string     `gorm:"size:150"`
	Phone     string     `gorm:"size:20"`
	Role      string     `gorm:"size:20;not null"`
	Password  string     `gorm:"not null"`
	IsActive  bool       `gorm:"not null"`
	BranchID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

func fromDomain(u *user.User) *User {
	return &User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Password:  u.Password,
		IsActive:  u.IsActive,
		BranchID:  u.BranchID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *User) toDomain() *user.User {
	return &user.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Phone:     m.Phone,
		Role:      user.Role(m.Role),
		Password:  m.Password,
		IsActive:  m.IsActive,
		BranchID:  m.BranchID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
