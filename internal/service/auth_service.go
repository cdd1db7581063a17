package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/repository"
	"github.com/annonstorg/annonstorg-backend/pkg/jwt"
)

// AuthService issues and refreshes token pairs
type AuthService interface {
	Login(req *domain.LoginRequest) (*domain.TokenResponse, error)
	Refresh(refreshToken string) (*domain.TokenResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtMgr   *jwt.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtMgr *jwt.Manager) AuthService {
	return &authService{userRepo: userRepo, jwtMgr: jwtMgr}
}

// Login verifies credentials and issues a token pair. Unknown email and
// wrong password return the same error.
func (s *authService) Login(req *domain.LoginRequest) (*domain.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a fresh pair. The user row is
// re-read so a level change since login takes effect on the next pair.
func (s *authService) Refresh(refreshToken string) (*domain.TokenResponse, error) {
	claims, err := s.jwtMgr.VerifyToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, common.ErrExpiredToken
		}
		return nil, common.ErrInvalidToken
	}
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *authService) issueTokens(user *domain.User) (*domain.TokenResponse, error) {
	access, err := s.jwtMgr.GenerateToken(user.ID, user.Nickname, user.Level)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(user.ID, user.Nickname, user.Level)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}
