package app

import (
	"sync"

	"quiz-platform-service/internal/domain"
)

// ResultFeed fans completed-attempt events out to live subscribers, per quiz.
type ResultFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.AttemptEvent]struct{}
}

func NewResultFeed() *ResultFeed {
	return &ResultFeed{
		subscribers: make(map[string]map[chan domain.AttemptEvent]struct{}),
	}
}

// Subscribe returns a channel of events for quizID.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ResultFeed) Subscribe(quizID string) (<-chan domain.AttemptEvent, func()) {
	ch := make(chan domain.AttemptEvent, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.AttemptEvent]struct{})
		f.subscribers[quizID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs, ok := f.subscribers[quizID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(f.subscribers, quizID)
		}
	}
	return ch, cancel
}

// Publish delivers event to every subscriber of its quiz without blocking.
// A full subscriber loses its oldest pending event.
func (f *ResultFeed) Publish(event domain.AttemptEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subscribers[event.QuizID] {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

// Subscribers reports how many listeners a quiz currently has.
func (f *ResultFeed) Subscribers(quizID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[quizID])
}
