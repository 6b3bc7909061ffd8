// Package accessor resolves get/set/subscribe capabilities for a
// property on a concrete runtime type, falling back to reflection when
// no precompiled accessor has been registered. Resolution results are
// memoized so reflection runs at most once per (type, property) pair.
package accessor

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/propwire/propwire/notify"
)

// ErrNoSuchProperty reports that the concrete runtime type has no
// readable member with the requested name.
var ErrNoSuchProperty = errors.New("accessor: no such property")

var (
	notifierType    = reflect.TypeOf((*notify.Notifier)(nil)).Elem()
	preNotifierType = reflect.TypeOf((*notify.PreNotifier)(nil)).Elem()
)

// Accessor is the resolved capability for one property on one concrete
// type: a getter, an optional setter and change-subscription hooks.
type Accessor struct {
	Property  string
	Declaring reflect.Type
	Value     reflect.Type

	get func(obj any) (any, bool)
	set func(obj any, v any) bool

	canTrack       bool
	canTrackBefore bool
}

// Get reads the property from obj. The second result is false when the
// value could not be read, e.g. through a nil pointer.
func (a *Accessor) Get(obj any) (any, bool) {
	if obj == nil {
		return nil, false
	}
	return a.get(obj)
}

// TrySet writes the property on obj, reporting whether the write took.
func (a *Accessor) TrySet(obj any, v any) bool {
	if a.set == nil || obj == nil {
		return false
	}
	return a.set(obj, v)
}

// CanTrack reports whether the declaring type announces post-mutation
// changes. When false the accessor is degraded: the value can be read
// once but SubscribeChanged never fires.
func (a *Accessor) CanTrack() bool {
	return a.canTrack
}

// CanTrackBefore reports whether the declaring type announces
// pre-mutation changes.
func (a *Accessor) CanTrackBefore() bool {
	return a.canTrackBefore
}

// SubscribeChanged invokes fn after every mutation that names this
// property, or names no property at all. On a degraded accessor the
// returned stop is a no-op and fn never runs.
func (a *Accessor) SubscribeChanged(obj any, fn func()) (stop func()) {
	n, ok := obj.(notify.Notifier)
	if !ok {
		return func() {}
	}
	want := a.Property
	return n.OnChanged(func(property string) {
		if property == "" || property == want {
			fn()
		}
	})
}

// SubscribeChanging is the pre-mutation counterpart of
// SubscribeChanged.
func (a *Accessor) SubscribeChanging(obj any, fn func()) (stop func()) {
	n, ok := obj.(notify.PreNotifier)
	if !ok {
		return func() {}
	}
	want := a.Property
	return n.OnChanging(func(property string) {
		if property == "" || property == want {
			fn()
		}
	})
}

// New builds a precompiled accessor from explicit functions, for use
// with Resolver.Register. get is required, set may be nil.
func New(
	declaring reflect.Type,
	property string,
	value reflect.Type,
	get func(obj any) (any, bool),
	set func(obj any, v any) bool,
) *Accessor {
	return &Accessor{
		Property:       property,
		Declaring:      declaring,
		Value:          value,
		get:            get,
		set:            set,
		canTrack:       declaring != nil && declaring.Implements(notifierType),
		canTrackBefore: declaring != nil && declaring.Implements(preNotifierType),
	}
}

// resolve synthesizes an accessor via reflection: an exported struct
// field first, then a niladic single-result method of the same name.
// The function is pure, so memoizing its result is safe from any
// goroutine.
func resolve(t reflect.Type, property string) (*Accessor, error) {
	elem := t
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	canTrack := t.Implements(notifierType)
	canBefore := t.Implements(preNotifierType)

	if elem.Kind() == reflect.Struct {
		if f, ok := elem.FieldByName(property); ok && f.IsExported() {
			idx := f.Index
			return &Accessor{
				Property:       property,
				Declaring:      t,
				Value:          f.Type,
				get:            fieldGetter(idx),
				set:            fieldSetter(idx),
				canTrack:       canTrack,
				canTrackBefore: canBefore,
			}, nil
		}
	}

	if m, ok := t.MethodByName(property); ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 {
		return &Accessor{
			Property:       property,
			Declaring:      t,
			Value:          m.Type.Out(0),
			get:            methodGetter(property),
			canTrack:       canTrack,
			canTrackBefore: canBefore,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchProperty, t.String(), property)
}

func fieldGetter(index []int) func(obj any) (any, bool) {
	return func(obj any) (any, bool) {
		v := reflect.ValueOf(obj)
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		return v.FieldByIndex(index).Interface(), true
	}
}

func fieldSetter(index []int) func(obj any, val any) bool {
	return func(obj any, val any) bool {
		v := reflect.ValueOf(obj)
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return false
			}
			v = v.Elem()
		}
		fv := v.FieldByIndex(index)
		if !fv.CanSet() {
			return false
		}
		if val == nil {
			fv.Set(reflect.Zero(fv.Type()))
			return true
		}
		rv := reflect.ValueOf(val)
		if !rv.Type().AssignableTo(fv.Type()) {
			return false
		}
		fv.Set(rv)
		return true
	}
}

func methodGetter(name string) func(obj any) (any, bool) {
	return func(obj any) (any, bool) {
		v := reflect.ValueOf(obj)
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return nil, false
		}
		out := v.MethodByName(name).Call(nil)
		return out[0].Interface(), true
	}
}
