package firebase

import (
	"sync"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
)

// listener delivers changes to one callback on its own goroutine. push never
// blocks and deliveries keep their order.
type listener struct {
	fn   ports.ChangeFunc
	wake chan struct{}
	done chan struct{}

	mu      sync.Mutex
	queue   []*domain.UserIdentity
	stopped bool
}

func newListener(fn ports.ChangeFunc) *listener {
	return &listener{
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (l *listener) push(user *domain.UserIdentity) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, user)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *listener) run() {
	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}
		for {
			l.mu.Lock()
			if l.stopped || len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			user := l.queue[0]
			l.queue = l.queue[1:]
			l.mu.Unlock()

			l.fn(user)
		}
	}
}

func (l *listener) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	l.queue = nil
	close(l.done)
}
