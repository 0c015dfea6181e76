package service

import (
	"go-store-catalog/internal/model"

	"github.com/google/uuid"
)

// Owned is a catalog entity with a fixed owner.
type Owned interface {
	OwnerID() uuid.UUID
}

// CanMutate reports whether the session user may edit or delete entity.
func CanMutate(session *model.Session, entity Owned) bool {
	return session.Authenticated() && session.UserID == entity.OwnerID()
}

// authorize turns CanMutate into the error the request boundary expects.
func authorize(session *model.Session, entity Owned, action string) error {
	if !session.Authenticated() {
		return authRequiredError()
	}
	if !CanMutate(session, entity) {
		return forbiddenError("You do not have permission to " + action + ".")
	}
	return nil
}

func requireLogin(session *model.Session) error {
	if !session.Authenticated() {
		return authRequiredError()
	}
	return nil
}
