package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	users []*User
}

func (f *fakeRepo) CreateUser(ctx context.Context, u *User) error {
	f.users = append(f.users, u)
	return nil
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id string) (*User, error) {
	for _, u := range f.users {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepo) ListUsers(ctx context.Context) ([]*User, error) { return f.users, nil }
func (f *fakeRepo) CountUsers(ctx context.Context) (int, error)    { return len(f.users), nil }

func TestCreateUser(t *testing.T) {
	svc := NewService(&fakeRepo{})

	u, err := svc.CreateUser(context.Background(), "lena", "s3cret", "")
	require.NoError(t, err)
	assert.Equal(t, RoleCashier, u.Role, "role defaults to cashier")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.CreateUser(context.Background(), "", "pw", "")
	assert.Error(t, err)

	_, err = svc.CreateUser(context.Background(), "lena", "", "")
	assert.Error(t, err)

	_, err = svc.CreateUser(context.Background(), "lena", "pw", "superuser")
	assert.Error(t, err)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.CreateUser(context.Background(), "lena", "pw", RoleAdmin)
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), "lena", "other", RoleCashier)
	assert.ErrorIs(t, err, ErrUsernameUsed)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	require.NoError(t, svc.EnsureDefaultAdmin(context.Background()))
	require.Len(t, repo.users, 1)
	assert.Equal(t, "admin", repo.users[0].Username)
	assert.Equal(t, RoleAdmin, repo.users[0].Role)

	// Idempotent: a populated store is left alone.
	require.NoError(t, svc.EnsureDefaultAdmin(context.Background()))
	assert.Len(t, repo.users, 1)
}
