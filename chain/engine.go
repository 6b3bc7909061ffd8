package chain

import (
	"fmt"
	"reflect"

	"github.com/propwire/propwire/accessor"
	"github.com/propwire/propwire/stream"
)

// Observe activates the chain against root. Every subscription to the
// returned observable builds its own subscription tree: one node per
// link, each watching its current parent value and rebuilding the
// downstream subtree whenever that value is replaced. Passing a nil
// resolver uses accessor.Default.
//
// Structural problems found while attaching (a property missing on the
// concrete runtime type) surface on the stream's error channel. A nil
// reference mid-chain is not an error: everything downstream detaches
// and the leaf reports nil until the reference is restored.
func (c *Chain) Observe(root any, res *accessor.Resolver) stream.Observable[any] {
	if res == nil {
		res = accessor.Default
	}
	return stream.Create(func(o stream.Observer[any], sub *stream.Subscription) {
		a := &activation{chain: c, res: res, out: o}
		a.head = a.newNode(0)
		sub.Add(a.dispose)

		a.head.attach(root)
		if a.disposed {
			return
		}
		leaf := a.leafValue()
		if c.opts.SkipInitial {
			// computed but withheld; it still seeds the distinct
			// comparison baseline
			a.lastEmitted = leaf
			a.primed = true
			return
		}
		a.emit(leaf)
	})
}

// activation is the mutable per-subscription state. It is owned by one
// subscriber and never shared, so it carries no locks; notifications
// are processed synchronously in delivery order.
type activation struct {
	chain       *Chain
	res         *accessor.Resolver
	out         stream.Observer[any]
	head        *node
	lastEmitted any
	primed      bool
	disposed    bool
}

func (a *activation) newNode(index int) *node {
	n := &node{act: a, index: index, link: a.chain.Links[index]}
	if index+1 < len(a.chain.Links) {
		n.child = a.newNode(index + 1)
	}
	return n
}

func (a *activation) leafValue() any {
	n := a.head
	for n.child != nil {
		n = n.child
	}
	return n.value
}

func (a *activation) emit(v any) {
	if a.disposed {
		return
	}
	if a.chain.opts.Distinct && a.primed && equalValues(a.lastEmitted, v) {
		return
	}
	a.lastEmitted = v
	a.primed = true
	a.out.OnNext(v)
}

func (a *activation) fail(err error) {
	if a.disposed {
		return
	}
	// the stream guard closes the subscription, which runs dispose,
	// before the error reaches the subscriber
	a.out.OnError(err)
}

func (a *activation) dispose() {
	if a.disposed {
		return
	}
	a.disposed = true
	a.head.detach()
}

// node tracks one link's current parent, value and live change
// subscription. Nodes form a single-child tree mirroring the link
// order; children never reference parents.
type node struct {
	act   *activation
	index int
	link  Link
	child *node

	// parent is a non-owning reference to the observed object
	parent       any
	acc          *accessor.Accessor
	value        any
	attached     bool
	stopChanged  func()
	stopChanging func()
}

// attach points the node at a new parent: resolve the accessor against
// the parent's concrete type, read the current value, attach the child
// against it, then subscribe to change notifications. Subscribing last
// means a notification can never observe a half-built subtree.
func (n *node) attach(parent any) {
	a := n.act
	if a.disposed {
		return
	}
	if isNil(parent) {
		n.detach()
		return
	}

	acc, err := a.res.Resolve(reflect.TypeOf(parent), n.link.Property)
	if err != nil {
		a.fail(fmt.Errorf("chain: %s: %w", a.chain.Path(), err))
		return
	}
	n.parent = parent
	n.acc = acc
	v, ok := acc.Get(parent)
	if !ok {
		v = nil
	}
	n.value = v
	n.attached = true

	if n.child != nil {
		n.child.attach(v)
		if a.disposed {
			return
		}
	}

	if a.chain.opts.BeforeChange && acc.CanTrackBefore() {
		n.stopChanging = acc.SubscribeChanging(parent, n.onChanging)
		n.stopChanged = acc.SubscribeChanged(parent, n.onChangedSilent)
	} else {
		n.stopChanged = acc.SubscribeChanged(parent, n.onChanged)
	}
}

// detach cancels this node's subscription before tearing down the
// child subtree, so a disposal-induced notification cannot re-enter.
func (n *node) detach() {
	if n.stopChanged != nil {
		n.stopChanged()
		n.stopChanged = nil
	}
	if n.stopChanging != nil {
		n.stopChanging()
		n.stopChanging = nil
	}
	n.parent = nil
	n.acc = nil
	n.value = nil
	n.attached = false
	if n.child != nil {
		n.child.detach()
	}
}

func (n *node) onChanged() {
	n.handleChanged(true)
}

// onChangedSilent keeps the tree consistent in beforeChange mode, where
// the emission already happened on the pre-mutation signal.
func (n *node) onChangedSilent() {
	n.handleChanged(false)
}

// handleChanged is the notification transition: recompute, bail if the
// value is unchanged and the chain is distinct, otherwise detach and
// reattach the whole downstream subtree, and only then emit the leaf.
// The ordering guarantees exactly one emission per source change
// regardless of chain depth.
func (n *node) handleChanged(emit bool) {
	a := n.act
	if a.disposed || !n.attached {
		return
	}
	v, ok := n.acc.Get(n.parent)
	if !ok {
		v = nil
	}
	if a.chain.opts.Distinct && equalValues(n.value, v) {
		return
	}
	n.value = v
	if n.child != nil {
		n.child.detach()
		n.child.attach(v)
		if a.disposed {
			return
		}
	}
	if emit {
		a.emit(a.leafValue())
	}
}

// onChanging fires before the mutation commits; the tree still holds
// the outgoing values, which is exactly what beforeChange reports.
func (n *node) onChanging() {
	a := n.act
	if a.disposed || !n.attached {
		return
	}
	a.emit(a.leafValue())
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// equalValues compares without panicking on uncomparable types;
// uncomparable values always count as changed.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
