package ports

import "github.com/crazylearners/portal/internal/core/domain"

// SessionEventBus fans session events out to subscribers.
type SessionEventBus interface {
	Publish(event domain.SessionEvent)
	Subscribe() (events <-chan domain.SessionEvent, cancel func())
	Close()
}
