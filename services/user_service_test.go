package services

import (
	"context"
	"testing"
	"time"

	"github.com/promptarena/prompt-arena/cache"
	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[int]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = len(r.users) + 1
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func newUserServiceForTest(users ...*models.User) UserService {
	return NewUserService(newFakeUserRepo(users...), cache.NewProfileCache(time.Minute))
}

func TestUpdateRole_AdminGrantsJudge(t *testing.T) {
	svc := newUserServiceForTest(&models.User{ID: 5, Role: models.RoleParticipant})

	user, err := svc.UpdateRole(context.Background(), models.RoleAdmin, 5, models.RoleJudge)
	require.NoError(t, err)
	assert.Equal(t, models.RoleJudge, user.Role)
}

func TestUpdateRole_AdminCannotMintAdmin(t *testing.T) {
	svc := newUserServiceForTest(&models.User{ID: 5, Role: models.RoleParticipant})

	_, err := svc.UpdateRole(context.Background(), models.RoleAdmin, 5, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestUpdateRole_SuperadminGrantsAdmin(t *testing.T) {
	svc := newUserServiceForTest(&models.User{ID: 5, Role: models.RoleJudge})

	user, err := svc.UpdateRole(context.Background(), models.RoleSuperAdmin, 5, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestUpdateRole_SuperadminUntouchable(t *testing.T) {
	svc := newUserServiceForTest(&models.User{ID: 1, Role: models.RoleSuperAdmin})

	_, err := svc.UpdateRole(context.Background(), models.RoleSuperAdmin, 1, models.RoleParticipant)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestUpdateRole_ParticipantForbidden(t *testing.T) {
	svc := newUserServiceForTest(&models.User{ID: 5, Role: models.RoleParticipant})

	_, err := svc.UpdateRole(context.Background(), models.RoleParticipant, 5, models.RoleJudge)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestUpdateRole_InvalidRole(t *testing.T) {
	svc := newUserServiceForTest(&models.User{ID: 5, Role: models.RoleParticipant})

	_, err := svc.UpdateRole(context.Background(), models.RoleAdmin, 5, models.UserRole("wizard"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateRole_UserNotFound(t *testing.T) {
	svc := newUserServiceForTest()

	_, err := svc.UpdateRole(context.Background(), models.RoleAdmin, 42, models.RoleJudge)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetByID_CachesProfile(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: 5, Email: "a@b.c", Role: models.RoleParticipant})
	svc := NewUserService(repo, cache.NewProfileCache(time.Minute))

	first, err := svc.GetByID(context.Background(), 5)
	require.NoError(t, err)

	// Mutate the backing store; the cached copy must still be served.
	repo.users[5].Email = "changed@b.c"

	second, err := svc.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, first.Email, second.Email)
}
