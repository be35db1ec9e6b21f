package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"cookconnect/internal/blobstore"
	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/repository"
	"cookconnect/internal/validation"
)

const maxBioLen = 500

type UserService struct {
	userRepo repository.UserRepository
	blobs    blobstore.Store
}

type UpdateProfileInput struct {
	Username     string
	Firstname    string
	Lastname     string
	Bio          string
	Avatar       *ImageUpload
	RemoveAvatar bool
}

func NewUserService(userRepo repository.UserRepository, blobs blobstore.Store) *UserService {
	return &UserService{userRepo: userRepo, blobs: blobs}
}

// Me returns the viewer's own account.
func (s *UserService) Me(ctx context.Context, viewer identity.Viewer) (*models.User, error) {
	if !viewer.Authenticated() {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	return s.userRepo.GetByID(ctx, viewer.UserID())
}

// UsernameAvailable reports whether username is free. The viewer's own
// username counts as available.
func (s *UserService) UsernameAvailable(ctx context.Context, viewer identity.Viewer, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, models.NewFieldValidationError("username", "Username is required")
	}
	taken, err := s.userRepo.UsernameTaken(ctx, username, viewer.UserID())
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// UpdateProfile edits the viewer's profile. The avatar changes only when a
// new file is supplied or RemoveAvatar is set.
func (s *UserService) UpdateProfile(ctx context.Context, viewer identity.Viewer, in UpdateProfileInput) (*models.User, error) {
	if !viewer.Authenticated() {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}

	username := strings.TrimSpace(in.Username)
	firstname := sanitizeText(in.Firstname)
	lastname := sanitizeText(in.Lastname)
	bio := sanitizeText(in.Bio)

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewFieldValidationError("username", err.Error())
	}
	if firstname == "" || lastname == "" {
		return nil, models.NewValidationError("firstname and lastname are required")
	}
	if utf8.RuneCountInString(bio) > maxBioLen {
		return nil, models.NewFieldValidationError("bio", "Bio too long (max 500 characters)")
	}

	user, err := s.userRepo.GetByID(ctx, viewer.UserID())
	if err != nil {
		return nil, err
	}
	if username != user.Username {
		taken, err := s.userRepo.UsernameTaken(ctx, username, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &models.AppError{Code: models.CodeConflict, Message: "Username already taken", Field: "username"}
		}
	}

	previousAvatar := user.AvatarURL
	switch {
	case in.Avatar != nil:
		url, err := s.blobs.Store(ctx, in.Avatar.Data, in.Avatar.ContentType)
		if err != nil {
			return nil, blobError(err)
		}
		user.AvatarURL = &url
	case in.RemoveAvatar:
		user.AvatarURL = nil
	}

	user.Username = username
	user.Firstname = firstname
	user.Lastname = lastname
	user.Bio = bio
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if in.Avatar != nil {
			_ = s.blobs.Delete(ctx, *user.AvatarURL)
		}
		return nil, err
	}

	if previousAvatar != nil && (user.AvatarURL == nil || *user.AvatarURL != *previousAvatar) {
		_ = s.blobs.Delete(ctx, *previousAvatar)
	}
	return user, nil
}
