package repository

import (
	"errors"

	"github.com/flocknet/flock-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository user lookup data access
type UserRepository interface {
	FindByID(id string) (*domain.User, error)
	FindByIDs(ids []string) (map[string]domain.User, error)
	// FindByUsernames resolves mention tokens against existing
	// accounts, case-sensitively. Unknown names are simply absent
	// from the result, never an error.
	FindByUsernames(usernames []string) ([]domain.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(id string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ids []string) (map[string]domain.User, error) {
	result := make(map[string]domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []domain.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *userRepository) FindByUsernames(usernames []string) ([]domain.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	var users []domain.User
	// BINARY forces a case-sensitive match on the utf8mb4 collation
	err := r.db.Where("BINARY username IN ?", usernames).Find(&users).Error
	return users, err
}
