package service

import (
	"context"
	"log/slog"
	"strings"

	"cookconnect/internal/blobstore"
	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/observability"
	"cookconnect/internal/repository"
	"cookconnect/internal/validation"
)

// TokenIssuer signs and revokes session tokens.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
	Revoke(ctx context.Context, credential string) error
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Firstname string
	Lastname  string
	Avatar    *ImageUpload
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	blobs  blobstore.Store
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, blobs blobstore.Store) *AuthService {
	return &AuthService{users: users, tokens: tokens, blobs: blobs}
}

func (in *RegisterInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Firstname = sanitizeText(in.Firstname)
	in.Lastname = sanitizeText(in.Lastname)

	if in.Username == "" || in.Email == "" || in.Password == "" || in.Firstname == "" || in.Lastname == "" {
		return models.NewValidationError("username, email, password, firstname and lastname are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return models.NewFieldValidationError("username", err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return models.NewFieldValidationError("email", err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return models.NewFieldValidationError("password", err.Error())
	}
	return nil
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	taken, err := s.users.EmailOrUsernameTaken(ctx, in.Email, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("Email or username already in use")
	}

	hash, err := identity.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	}
	if in.Avatar != nil {
		url, err := s.blobs.Store(ctx, in.Avatar.Data, in.Avatar.ContentType)
		if err != nil {
			return nil, blobError(err)
		}
		user.AvatarURL = &url
	}

	if err := s.users.Create(ctx, user); err != nil {
		if user.AvatarURL != nil {
			s.discardBlob(ctx, *user.AvatarURL)
		}
		return nil, err
	}
	return s.issue(user)
}

// Login checks credentials. Suspended accounts are refused before the
// password is compared.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthenticatedError("Invalid credentials")
	}
	if user.IsBanned() {
		return nil, models.NewForbiddenError("Your account has been suspended")
	}

	ok, err := identity.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !ok {
		return nil, models.NewUnauthenticatedError("Invalid credentials")
	}
	return s.issue(user)
}

// Logout revokes credential until it would have expired.
func (s *AuthService) Logout(ctx context.Context, credential string) error {
	if err := s.tokens.Revoke(ctx, credential); err != nil {
		return models.NewUnauthenticatedError("Invalid or expired token")
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) discardBlob(ctx context.Context, url string) {
	if err := s.blobs.Delete(ctx, url); err != nil {
		observability.OrphanedBlobs.WithLabelValues("avatar").Inc()
		observability.GlobalLogger.WarnContext(ctx, "failed to remove avatar",
			slog.String("url", url), slog.String("error", err.Error()))
	}
}
