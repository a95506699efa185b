package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atkinsj/dumpbin/internal/auth"
	"github.com/atkinsj/dumpbin/internal/models"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	db := newTestDB(t)
	return NewUserService(db, auth.BcryptVerifier{}, NewEventService(db, nil))
}

func TestCreateUser_HashesCredential(t *testing.T) {
	svc := newTestUserService(t)

	created, err := svc.CreateUser("josh", "josh@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	stored, err := svc.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "hunter2", stored.PasswordHash, "credential must never be stored as plaintext")
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc := newTestUserService(t)

	_, err := svc.CreateUser("josh", "a@example.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.CreateUser("JOSH", "b@example.com", "pw123456")
	assert.ErrorIs(t, err, ErrUsernameTaken, "usernames are unique case-insensitively")
}

func TestCreateUser_RequiresFields(t *testing.T) {
	svc := newTestUserService(t)

	_, err := svc.CreateUser("", "a@example.com", "pw")
	assert.Error(t, err)

	_, err = svc.CreateUser("nopass", "a@example.com", "")
	assert.Error(t, err)
}

func TestAuthenticateUser(t *testing.T) {
	svc := newTestUserService(t)

	_, err := svc.CreateUser("ana", "ana@example.com", "correct-horse")
	require.NoError(t, err)

	user, err := svc.AuthenticateUser("ana", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Empty(t, user.PasswordHash, "authenticated user must come back scrubbed")

	_, err = svc.AuthenticateUser("ana", "wrong")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = svc.AuthenticateUser("nobody", "whatever")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestGetUserByUsername_CaseInsensitive(t *testing.T) {
	svc := newTestUserService(t)

	created, err := svc.CreateUser("MixedCase", "m@example.com", "pw123456")
	require.NoError(t, err)

	found, err := svc.GetUserByUsername("mixedcase")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestUserService(t)

	created, err := svc.CreateUser("kit", "old@example.com", "old-password")
	require.NoError(t, err)

	avatar := []byte{0x89, 'P', 'N', 'G'}
	updated, err := svc.UpdateProfile(created.ID, "new@example.com", "https://kit.example", "new-password", avatar)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "https://kit.example", updated.Website)

	_, err = svc.AuthenticateUser("kit", "new-password")
	require.NoError(t, err)
	_, err = svc.AuthenticateUser("kit", "old-password")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	stored, err := svc.GetAvatar("kit")
	require.NoError(t, err)
	assert.Equal(t, avatar, stored)
}

func TestUpdateProfile_OptionalFieldsUntouched(t *testing.T) {
	svc := newTestUserService(t)

	created, err := svc.CreateUser("sam", "sam@example.com", "keep-me")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(created.ID, "sam@example.com", "", "", nil)
	require.NoError(t, err)

	_, err = svc.AuthenticateUser("sam", "keep-me")
	require.NoError(t, err, "empty password must not overwrite the credential")

	avatar, err := svc.GetAvatar("sam")
	require.NoError(t, err)
	assert.Nil(t, avatar, "nil avatar must not overwrite the stored one")
}

func TestGetAvatar_UnknownUser(t *testing.T) {
	svc := newTestUserService(t)

	_, err := svc.GetAvatar("ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUsernameExists(t *testing.T) {
	svc := newTestUserService(t)

	_, err := svc.CreateUser("taken", "t@example.com", "pw123456")
	require.NoError(t, err)

	exists, err := svc.UsernameExists("TAKEN")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.UsernameExists("free")
	require.NoError(t, err)
	assert.False(t, exists)
}
