package page

import (
	"context"

	"movie-catalog/pkg/utils"

	"github.com/google/uuid"
)

// Session is the signed-in identity a page works for.
type Session struct {
	UserID uuid.UUID
	Email  string
}

type SessionProvider interface {
	Session(ctx context.Context) (Session, bool)
}

// ContextSessions reads the session placed on the request context by the
// session middleware.
type ContextSessions struct{}

func (ContextSessions) Session(ctx context.Context) (Session, bool) {
	email, ok := utils.GetEmailFromContext(ctx)
	if !ok {
		return Session{}, false
	}
	userID, _ := utils.GetUserIDFromContext(ctx)
	return Session{UserID: userID, Email: email}, true
}

// Guard returns the current session, or false when the visitor has to be
// sent to RouteHome.
func Guard(ctx context.Context, sessions SessionProvider) (Session, bool) {
	if sessions == nil {
		return Session{}, false
	}
	s, ok := sessions.Session(ctx)
	if !ok || s.Email == "" {
		return Session{}, false
	}
	return s, true
}
