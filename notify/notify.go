// Package notify defines the change-notification contract observed
// objects may opt into, plus an embeddable Broadcaster that implements
// it. Objects that do not implement the contract can still be read, but
// their changes go untracked.
package notify

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Notifier announces property mutations after they commit. An empty
// property name passed to a handler means "anything may have changed".
type Notifier interface {
	OnChanged(fn func(property string)) (stop func())
}

// PreNotifier announces a property mutation just before it commits, so
// a handler can still observe the outgoing value.
type PreNotifier interface {
	OnChanging(fn func(property string)) (stop func())
}

type handler struct {
	fn func(property string)
}

// Broadcaster is an embeddable implementation of Notifier and
// PreNotifier. The zero value is ready to use.
type Broadcaster struct {
	once     sync.Once
	changing mapset.Set[*handler]
	changed  mapset.Set[*handler]
}

func (b *Broadcaster) init() {
	b.once.Do(func() {
		b.changing = mapset.NewSet[*handler]()
		b.changed = mapset.NewSet[*handler]()
	})
}

func (b *Broadcaster) OnChanged(fn func(property string)) (stop func()) {
	b.init()
	h := &handler{fn: fn}
	b.changed.Add(h)
	return func() {
		b.changed.Remove(h)
	}
}

func (b *Broadcaster) OnChanging(fn func(property string)) (stop func()) {
	b.init()
	h := &handler{fn: fn}
	b.changing.Add(h)
	return func() {
		b.changing.Remove(h)
	}
}

// Changing fires pre-mutation handlers. Call it before assigning the
// new value.
func (b *Broadcaster) Changing(property string) {
	b.init()
	for _, h := range b.changing.ToSlice() {
		h.fn(property)
	}
}

// Changed fires post-mutation handlers. Call it after assigning the new
// value.
func (b *Broadcaster) Changed(property string) {
	b.init()
	for _, h := range b.changed.ToSlice() {
		h.fn(property)
	}
}
