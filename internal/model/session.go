package model

import "github.com/google/uuid"

// Session is the request-scoped login state. The zero value is an anonymous visitor.
type Session struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Picture string    `json:"picture"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != uuid.Nil
}
