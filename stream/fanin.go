package stream

import "sync"

// One slot of the fan-in. hasValue flips to true exactly once, on the
// slot's first emission, and never reverts.
type cell struct {
	hasValue bool
	done     bool
	last     any
}

// CombineLatest joins the sources into one stream of snapshots using
// latest-value semantics. Nothing is emitted until every source has
// produced at least one value; after that, each emission from any
// source yields a snapshot combining it with the cached values of the
// others. A source error propagates and unsubscribes every sibling.
// The output completes once all sources have completed.
func CombineLatest(sources ...Observable[any]) Observable[[]any] {
	return Create(func(o Observer[[]any], sub *Subscription) {
		n := len(sources)
		if n == 0 {
			o.OnComplete()
			return
		}
		var (
			mu        sync.Mutex
			cells     = make([]cell, n)
			ready     int
			doneCount int
		)
		for i, src := range sources {
			i := i
			inner := src.Subscribe(Observer[any]{
				Next: func(v any) {
					mu.Lock()
					c := &cells[i]
					if !c.hasValue {
						c.hasValue = true
						ready++
					}
					c.last = v
					var snapshot []any
					if ready == n {
						snapshot = make([]any, n)
						for j := range cells {
							snapshot[j] = cells[j].last
						}
					}
					mu.Unlock()
					if snapshot != nil {
						o.OnNext(snapshot)
					}
				},
				Err: func(err error) { o.OnError(err) },
				Done: func() {
					mu.Lock()
					if !cells[i].done {
						cells[i].done = true
						doneCount++
					}
					all := doneCount == n
					mu.Unlock()
					if all {
						o.OnComplete()
					}
				},
			})
			sub.Add(inner.Unsubscribe)
		}
	})
}
