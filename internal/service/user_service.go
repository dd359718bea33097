package service

import (
	"strconv"

	"github.com/yhafez/read-master-sub002/internal/models"
	"github.com/yhafez/read-master-sub002/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

// ResolveUser accepts either a numeric ID or a username.
func (s *UserService) ResolveUser(identifier string) (*models.User, error) {
	if id, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		return s.userRepo.FindByID(uint(id))
	}
	return s.userRepo.FindByUsername(identifier)
}
