package domain

import "time"

// AdminLevel is the minimum level granting moderator rights
const AdminLevel = 10

// User is an account that can list ads and exchange messages
type User struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Nickname     string    `gorm:"column:nickname;size:50;not null" json:"nickname"`
	PasswordHash string    `gorm:"column:password_hash;size:100;not null" json:"-"`
	Level        int       `gorm:"column:level;default:1" json:"level"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user has moderator rights
func (u *User) IsAdmin() bool {
	return u.Level >= AdminLevel
}

// LoginRequest is the credentials payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse carries an issued token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
