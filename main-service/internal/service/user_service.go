package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"github.com/MIgor26/explore-with-me/main-service/internal/repository"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(ctx context.Context, req dto.NewUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, ids []uint, from, size int) ([]dto.UserResponse, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) CreateUser(ctx context.Context, req dto.NewUserRequest) (*dto.UserResponse, error) {
	user := &models.User{Name: strings.TrimSpace(req.Name), Email: strings.TrimSpace(req.Email)}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, writeErr(err, "create user")
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context, ids []uint, from, size int) ([]dto.UserResponse, error) {
	users, err := s.repo.FindAll(ctx, ids, from, size)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = dto.ToUserResponse(&users[i])
	}
	return resp, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lookupErr(err, "user", id)
		}
		return writeErr(err, "delete user")
	}
	return nil
}
