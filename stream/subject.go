package stream

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

type port[T any] struct {
	o Observer[T]
}

// Subject is a hot multicast source. It implements Observable and
// forwards Next/Fail/Complete to every current subscriber.
type Subject[T any] struct {
	mu    sync.Mutex
	ports mapset.Set[*port[T]]
	done  bool
	err   error
}

func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{
		ports: mapset.NewSet[*port[T]](),
	}
}

func (s *Subject[T]) Subscribe(o Observer[T]) *Subscription {
	sub := NewSubscription()
	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()
		sub.Unsubscribe()
		if err != nil {
			o.OnError(err)
		} else {
			o.OnComplete()
		}
		return sub
	}
	p := &port[T]{o: o}
	s.ports.Add(p)
	s.mu.Unlock()

	sub.Add(func() {
		s.ports.Remove(p)
	})
	return sub
}

func (s *Subject[T]) Next(v T) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	ports := s.ports.ToSlice()
	s.mu.Unlock()
	for _, p := range ports {
		p.o.OnNext(v)
	}
}

func (s *Subject[T]) Fail(err error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.err = err
	ports := s.ports.ToSlice()
	s.ports.Clear()
	s.mu.Unlock()
	for _, p := range ports {
		p.o.OnError(err)
	}
}

func (s *Subject[T]) Complete() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	ports := s.ports.ToSlice()
	s.ports.Clear()
	s.mu.Unlock()
	for _, p := range ports {
		p.o.OnComplete()
	}
}
