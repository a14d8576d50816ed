package domain

import "github.com/google/uuid"

// Session is the authenticated caller of a core operation. It is passed
// explicitly; the zero value is an unauthenticated session.
type Session struct {
	AccountID uuid.UUID
	Role      Role
}

func NewSession(a *Account) Session {
	return Session{AccountID: a.ID, Role: a.Role}
}

func (s Session) Valid() bool {
	return s.AccountID != uuid.Nil
}

func (s Session) IsAdmin() bool {
	return s.Valid() && s.Role == RoleAdmin
}
