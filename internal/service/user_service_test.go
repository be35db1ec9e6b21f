package service

import (
	"context"
	"strings"
	"testing"

	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileInput(username string) UpdateProfileInput {
	return UpdateProfileInput{Username: username, Firstname: "Ana", Lastname: "García", Bio: "Cocinera"}
}

func TestUserService_UsernameAvailable(t *testing.T) {
	f := newFixture(t)
	ana := testutil.CreateUser(t, f.db, "ana")
	testutil.CreateUser(t, f.db, "luis")
	svc := NewUserService(f.users, f.blobs)
	ctx := context.Background()

	tests := []struct {
		name     string
		viewer   identity.Viewer
		username string
		want     bool
	}{
		{name: "free", viewer: identity.Anonymous(), username: "marta", want: true},
		{name: "taken", viewer: identity.Anonymous(), username: "luis"},
		{name: "own username", viewer: asViewer(ana), username: "ana", want: true},
		{name: "own username when anonymous", viewer: identity.Anonymous(), username: "ana"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.UsernameAvailable(ctx, tt.viewer, tt.username)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := svc.UsernameAvailable(ctx, identity.Anonymous(), "  ")
	assertCode(t, err, models.CodeValidation)
}

func TestUserService_UpdateProfile_Validation(t *testing.T) {
	f := newFixture(t)
	ana := testutil.CreateUser(t, f.db, "ana")
	testutil.CreateUser(t, f.db, "luis")
	svc := NewUserService(f.users, f.blobs)
	ctx := context.Background()

	longBio := profileInput("ana")
	longBio.Bio = strings.Repeat("x", 501)
	noName := profileInput("ana")
	noName.Firstname = "<b></b>"

	tests := []struct {
		name      string
		viewer    identity.Viewer
		in        UpdateProfileInput
		wantCode  string
		wantField string
	}{
		{name: "anonymous", viewer: identity.Anonymous(), in: profileInput("ana"), wantCode: models.CodeUnauthenticated},
		{name: "username too long", viewer: asViewer(ana), in: profileInput(strings.Repeat("x", 31)), wantCode: models.CodeValidation, wantField: "username"},
		{name: "bio too long", viewer: asViewer(ana), in: longBio, wantCode: models.CodeValidation, wantField: "bio"},
		{name: "names required", viewer: asViewer(ana), in: noName, wantCode: models.CodeValidation},
		{name: "username taken", viewer: asViewer(ana), in: profileInput("luis"), wantCode: models.CodeConflict, wantField: "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(ctx, tt.viewer, tt.in)
			assertCode(t, err, tt.wantCode)
			if tt.wantField != "" {
				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantField, appErr.Field)
			}
		})
	}
}

func TestUserService_UpdateProfile_Avatar(t *testing.T) {
	f := newFixture(t)
	ana := testutil.CreateUser(t, f.db, "ana")
	svc := NewUserService(f.users, f.blobs)
	ctx := context.Background()

	withAvatar := profileInput("ana_cocina")
	withAvatar.Avatar = &ImageUpload{Data: []byte("first"), ContentType: "image/png"}
	user, err := svc.UpdateProfile(ctx, asViewer(ana), withAvatar)
	require.NoError(t, err)
	require.NotNil(t, user.AvatarURL)
	first := *user.AvatarURL
	assert.Equal(t, "ana_cocina", user.Username)

	unchanged, err := svc.UpdateProfile(ctx, asViewer(ana), profileInput("ana_cocina"))
	require.NoError(t, err)
	require.NotNil(t, unchanged.AvatarURL)
	assert.Equal(t, first, *unchanged.AvatarURL, "no file keeps the current avatar")
	assert.Empty(t, f.blobs.Deleted)

	replace := profileInput("ana_cocina")
	replace.Avatar = &ImageUpload{Data: []byte("second"), ContentType: "image/png"}
	user, err = svc.UpdateProfile(ctx, asViewer(ana), replace)
	require.NoError(t, err)
	assert.NotEqual(t, first, *user.AvatarURL)
	assert.Equal(t, []string{first}, f.blobs.Deleted)

	remove := profileInput("ana_cocina")
	remove.RemoveAvatar = true
	user, err = svc.UpdateProfile(ctx, asViewer(ana), remove)
	require.NoError(t, err)
	assert.Nil(t, user.AvatarURL)
	assert.Len(t, f.blobs.Deleted, 2)

	var stored models.User
	require.NoError(t, f.db.First(&stored, ana.ID).Error)
	assert.Nil(t, stored.AvatarURL)
	assert.Equal(t, "not-a-real-hash", stored.PasswordHash, "profile edits never touch the password")

	me, err := svc.Me(ctx, asViewer(ana))
	require.NoError(t, err)
	assert.Equal(t, "ana_cocina", me.Username)
}
