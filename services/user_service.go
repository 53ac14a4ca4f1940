package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/promptarena/prompt-arena/cache"
	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
)

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	ListJudges(ctx context.Context) ([]models.User, error)

	// UpdateRole applies the role-granting rules: a superadmin may grant
	// any role; an admin may grant judge or participant; nobody demotes
	// a superadmin.
	UpdateRole(ctx context.Context, actorRole models.UserRole, userID int, role models.UserRole) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	profiles *cache.ProfileCache
}

func NewUserService(userRepo repositories.UserRepository, profiles *cache.ProfileCache) UserService {
	return &userService{
		userRepo: userRepo,
		profiles: profiles,
	}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	if user, ok := s.profiles.Get(id); ok {
		return user, nil
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""

	s.profiles.Set(user)
	return user, nil
}

func (s *userService) ListJudges(ctx context.Context) ([]models.User, error) {
	judges, err := s.userRepo.ListByRole(ctx, models.RoleJudge)
	if err != nil {
		return nil, fmt.Errorf("failed to list judges: %w", err)
	}
	for i := range judges {
		judges[i].PasswordHash = ""
	}
	return judges, nil
}

func (s *userService) UpdateRole(ctx context.Context, actorRole models.UserRole, userID int, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if target.Role == models.RoleSuperAdmin {
		return nil, ErrForbiddenOperation
	}
	switch actorRole {
	case models.RoleSuperAdmin:
		// May grant anything.
	case models.RoleAdmin:
		if role == models.RoleAdmin || role == models.RoleSuperAdmin {
			return nil, ErrForbiddenOperation
		}
	default:
		return nil, ErrForbiddenOperation
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// The cached profile now carries a stale role.
	s.profiles.Invalidate(userID)

	target.Role = role
	target.PasswordHash = ""
	return target, nil
}
