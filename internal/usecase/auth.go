package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

var errInvalidCredentials = &AuthError{Reason: "invalid credentials"}

// AuthUseCase registers users and exchanges credentials for bearer tokens.
type AuthUseCase struct {
	Users  entity.UserRepositoryInterface
	Hasher PasswordHasher
	Tokens TokenIssuer
	Logger *zap.Logger
}

func NewAuthUseCase(users entity.UserRepositoryInterface, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *AuthUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthUseCase{Users: users, Hasher: hasher, Tokens: tokens, Logger: logger}
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*UserOutput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = entity.NormalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	hash, err := uc.Hasher.Hash(input.Password)
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: "failed to hash password", Err: err}
	}

	user := entity.NewUser(input.Name, input.Email, hash)
	if err := uc.Users.Create(ctx, user); err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			return nil, &DomainError{Code: "EMAIL_IN_USE", Message: "email already in use"}
		}
		return nil, storageError("failed to create user", err)
	}

	uc.Logger.Info("user registered", zap.String("user_id", user.ID))
	return &UserOutput{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Login answers unknown e-mail and wrong password identically.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	input.Email = entity.NormalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	user, err := uc.Users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, storageError("failed to load user", err)
	}
	if !uc.Hasher.Compare(user.PasswordHash, input.Password) {
		return nil, errInvalidCredentials
	}

	token, expiresAt, err := uc.Tokens.Issue(user)
	if err != nil {
		return nil, &TechnicalError{Code: "TOKEN_ERROR", Message: "failed to issue token", Err: err}
	}

	return &LoginOutput{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        UserOutput{ID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}

// Authenticate resolves a bearer token to the caller's identity.
func (uc *AuthUseCase) Authenticate(token string) (entity.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return entity.Identity{}, &AuthError{Reason: "missing bearer token"}
	}
	id, err := uc.Tokens.Validate(token)
	if err != nil {
		return entity.Identity{}, &AuthError{Reason: err.Error()}
	}
	if !id.Valid() {
		return entity.Identity{}, &AuthError{Reason: "token has no subject"}
	}
	return id, nil
}
