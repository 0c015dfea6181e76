package service

import (
	"errors"

	"go-store-catalog/internal/model"
	"go-store-catalog/internal/repository"
	"go-store-catalog/pkg/jwt"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidToken = errors.New("invalid session")
)

type AuthService interface {
	Login(email, name, picture string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*model.Session, error)
}

type LoginResponse struct {
	Token   string         `json:"token"`
	User    *model.User    `json:"user"`
	Session *model.Session `json:"-"`
}

type authService struct {
	identity IdentityResolver
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(identity IdentityResolver, userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{
		identity: identity,
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Login resolves the provider identity to a local user and signs a session token for it.
func (s *authService) Login(email, name, picture string) (*LoginResponse, error) {
	user, err := s.identity.Resolve(email, name, picture)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Name, user.Picture)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token: token,
		User:  user,
		Session: &model.Session{
			UserID:  user.ID,
			Email:   user.Email,
			Name:    user.Name,
			Picture: user.Picture,
		},
	}, nil
}

// ValidateToken rebuilds the request session from a token whose user still exists.
func (s *authService) ValidateToken(tokenString string) (*model.Session, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return &model.Session{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Picture: user.Picture,
	}, nil
}
