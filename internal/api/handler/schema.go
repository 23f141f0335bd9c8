package handler

import (
	"time"

	"github.com/crazylearners/portal/internal/core/domain"
)

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"     validate:"required,max=80"`
}

type askRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

type sessionResponse struct {
	User     *domain.UserIdentity `json:"user"`
	Loading  bool                 `json:"loading"`
	Phase    domain.Phase         `json:"phase"`
	Backend  domain.BackendKind   `json:"backend"`
	DemoMode bool                 `json:"demo_mode"`
}

type sessionEventResponse struct {
	sessionResponse
	At time.Time `json:"at"`
}

type identityResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

type messagesResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
}

func toSessionResponse(s domain.SessionState, demo bool) sessionResponse {
	return sessionResponse{
		User:     s.CurrentUser,
		Loading:  s.Loading,
		Phase:    s.Phase(),
		Backend:  s.Backend,
		DemoMode: demo,
	}
}
