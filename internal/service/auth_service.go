package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/repository"
	"github.com/noah-isme/classroom-go-api/pkg/token"
)

// AuthService resolves identities and issues access tokens.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
}

type authService struct {
	users     repository.UserRepository
	validator *validator.Validate
	signer    *token.Signer
	logger    zerolog.Logger
}

// NewAuthService builds a new auth service.
func NewAuthService(users repository.UserRepository, validate *validator.Validate, signer *token.Signer, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		validator: validate,
		signer:    signer,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

// Login resolves the username, registering a new user with the requested role
// on first sight. An existing user keeps their stored role regardless of the
// role in the request.
func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, payload.Username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, err
		}

		user = models.User{Username: payload.Username, Role: payload.Role}
		if err := s.users.Create(ctx, &user); err != nil {
			return dto.LoginResponse{}, err
		}

		s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	}

	signed, err := s.signer.Sign(user.ID, user.Role)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	return dto.LoginResponse{
		Token: signed,
		User:  dto.NewUserResponse(user),
	}, nil
}
