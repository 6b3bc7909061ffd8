// Package propwire observes paths of properties rooted at an object as
// live streams. A path like "Engine.Status.Label" is decomposed into a
// chain of links; the chain re-wires itself whenever any link's value
// is replaced, and independent chains can be fused with latest-value
// semantics.
//
// Observed objects announce their own mutations through the
// notify.Notifier contract. Objects without it are still readable, but
// changes to that hop go untracked.
package propwire

import (
	"errors"
	"reflect"

	"github.com/propwire/propwire/accessor"
	"github.com/propwire/propwire/chain"
	"github.com/propwire/propwire/stream"
)

// ErrNoPaths reports a fan-in call with an empty path list.
var ErrNoPaths = errors.New("propwire: at least one path is required")

// Option adjusts chain behavior. The defaults observe post-change
// values, emit the value current at subscription time and suppress
// consecutive duplicates.
type Option func(*chain.Options)

// SkipInitial suppresses the value computed at subscription time; only
// changes after subscribing are emitted.
func SkipInitial() Option {
	return func(o *chain.Options) {
		o.SkipInitial = true
	}
}

// KeepDuplicates turns off the suppression of consecutive equal
// emissions.
func KeepDuplicates() Option {
	return func(o *chain.Options) {
		o.Distinct = false
	}
}

// BeforeChange emits the value observed just before a mutation commits,
// for objects implementing notify.PreNotifier. Objects that only
// announce post-mutation fall back to post-change timing.
func BeforeChange() Option {
	return func(o *chain.Options) {
		o.BeforeChange = true
	}
}

func buildOptions(opts []Option) chain.Options {
	o := chain.Options{Distinct: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ObservePath observes the dotted property path rooted at root as a
// stream of T. A malformed path fails here, synchronously; a property
// missing on a concrete runtime type surfaces on the stream's error
// channel at attach time. A nil reference mid-path yields the zero T.
func ObservePath[T any](root any, path string, opts ...Option) (stream.Observable[T], error) {
	c, err := chain.Parse(reflect.TypeOf(root), path, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return stream.Map(c.Observe(root, nil), zeroOnMiss[T]), nil
}

// ObservePathWith is ObservePath with an injected resolver, for callers
// that keep an isolated accessor cache.
func ObservePathWith[T any](res *accessor.Resolver, root any, path string, opts ...Option) (stream.Observable[T], error) {
	c, err := chain.Parse(reflect.TypeOf(root), path, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return stream.Map(c.Observe(root, res), zeroOnMiss[T]), nil
}

// zeroOnMiss projects the chain's untyped leaf onto T, mapping an
// absent (nil or foreign-typed) value to the zero T.
func zeroOnMiss[T any](v any) T {
	if t, ok := v.(T); ok {
		return t
	}
	var zero T
	return zero
}
