// Package stream is a small synchronous reactive stream algebra.
// Everything runs on whichever goroutine delivers a value; there are no
// owned goroutines, channels or timers.
package stream

import "sync"

// Observer receives the events of an Observable. Any of the three
// callbacks may be nil.
type Observer[T any] struct {
	Next func(T)
	Err  func(error)
	Done func()
}

func (o Observer[T]) OnNext(v T) {
	if o.Next != nil {
		o.Next(v)
	}
}

func (o Observer[T]) OnError(err error) {
	if o.Err != nil {
		o.Err(err)
	}
}

func (o Observer[T]) OnComplete() {
	if o.Done != nil {
		o.Done()
	}
}

// Observable is a cold stream of values. Each Subscribe starts an
// independent activation.
type Observable[T any] interface {
	Subscribe(o Observer[T]) *Subscription
}

// Subscription aggregates teardown work. Unsubscribe is idempotent and
// after it returns no further events reach the observer.
type Subscription struct {
	mu       sync.Mutex
	closed   bool
	teardown []func()
}

func NewSubscription() *Subscription {
	return &Subscription{}
}

// Add registers teardown work. If the subscription is already closed
// the function runs immediately.
func (s *Subscription) Add(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.teardown = append(s.teardown, fn)
	s.mu.Unlock()
}

func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	fns := s.teardown
	s.teardown = nil
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type source[T any] struct {
	activate func(o Observer[T], sub *Subscription)
}

// Create builds an Observable from an activation function. The observer
// handed to the activation is guarded: events after Unsubscribe are
// dropped, and a terminal event closes the subscription before it is
// delivered downstream.
func Create[T any](activate func(o Observer[T], sub *Subscription)) Observable[T] {
	return &source[T]{activate: activate}
}

func (s *source[T]) Subscribe(o Observer[T]) *Subscription {
	sub := NewSubscription()
	s.activate(guard(o, sub), sub)
	return sub
}

func guard[T any](o Observer[T], sub *Subscription) Observer[T] {
	return Observer[T]{
		Next: func(v T) {
			if sub.Closed() {
				return
			}
			o.OnNext(v)
		},
		Err: func(err error) {
			if sub.Closed() {
				return
			}
			sub.Unsubscribe()
			o.OnError(err)
		},
		Done: func() {
			if sub.Closed() {
				return
			}
			sub.Unsubscribe()
			o.OnComplete()
		},
	}
}
