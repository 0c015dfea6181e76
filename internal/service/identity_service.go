package service

import (
	"errors"
	"strings"

	"go-store-catalog/internal/model"
	"go-store-catalog/internal/repository"
	"go-store-catalog/pkg/validator"

	"gorm.io/gorm"
)

// IdentityResolver maps a verified external identity onto exactly one local user.
type IdentityResolver interface {
	Resolve(email, name, picture string) (*model.User, error)
}

type identityResolver struct {
	userRepo repository.UserRepository
}

func NewIdentityResolver(userRepo repository.UserRepository) IdentityResolver {
	return &identityResolver{userRepo: userRepo}
}

// Resolve returns the user owning email, creating it on first login.
// Name and picture of an existing user are left untouched.
func (r *identityResolver) Resolve(email, name, picture string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := r.userRepo.FindByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageError("failed to look up user", err)
	}

	user = &model.User{Email: email, Name: strings.TrimSpace(name), Picture: picture}
	if errs := validator.ValidateStruct(user); len(errs) > 0 {
		return nil, validationError("%s", validator.Message(errs))
	}

	err = r.userRepo.Create(user)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent first login won the insert
		existing, findErr := r.userRepo.FindByEmail(email)
		if findErr != nil {
			return nil, storageError("failed to re-read user", findErr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, storageError("failed to create user", err)
	}
	return user, nil
}
