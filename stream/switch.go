package stream

import "sync"

// SwitchLatest flattens a stream of streams by mirroring only the most
// recently emitted inner stream. Selecting a new inner stream
// unsubscribes the previous one first, so two inner streams are never
// live at once; a nil inner stream is treated as Empty. The output
// completes once the outer stream is done and the current inner stream
// has completed.
func SwitchLatest[T any](outer Observable[Observable[T]]) Observable[T] {
	return Create(func(o Observer[T], sub *Subscription) {
		var (
			mu        sync.Mutex
			innerSub  *Subscription
			outerDone bool
			innerLive bool
			gen       int
		)

		outerSub := outer.Subscribe(Observer[Observable[T]]{
			Next: func(next Observable[T]) {
				mu.Lock()
				gen++
				myGen := gen
				prev := innerSub
				innerSub = nil
				innerLive = true
				mu.Unlock()
				if prev != nil {
					prev.Unsubscribe()
				}
				if next == nil {
					next = Empty[T]()
				}
				is := next.Subscribe(Observer[T]{
					Next: func(v T) {
						mu.Lock()
						current := gen == myGen
						mu.Unlock()
						if current {
							o.OnNext(v)
						}
					},
					Err: func(err error) {
						mu.Lock()
						current := gen == myGen
						mu.Unlock()
						if current {
							o.OnError(err)
						}
					},
					Done: func() {
						mu.Lock()
						if gen != myGen {
							mu.Unlock()
							return
						}
						innerLive = false
						finish := outerDone
						mu.Unlock()
						if finish {
							o.OnComplete()
						}
					},
				})
				mu.Lock()
				superseded := gen != myGen
				if !superseded {
					innerSub = is
				}
				mu.Unlock()
				if superseded {
					is.Unsubscribe()
				}
			},
			Err: func(err error) { o.OnError(err) },
			Done: func() {
				mu.Lock()
				outerDone = true
				finish := !innerLive
				mu.Unlock()
				if finish {
					o.OnComplete()
				}
			},
		})
		sub.Add(outerSub.Unsubscribe)
		sub.Add(func() {
			mu.Lock()
			is := innerSub
			innerSub = nil
			mu.Unlock()
			if is != nil {
				is.Unsubscribe()
			}
		})
	})
}
