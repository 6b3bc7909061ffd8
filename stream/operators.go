package stream

import "sync"

// Empty completes immediately without emitting.
func Empty[T any]() Observable[T] {
	return Create(func(o Observer[T], _ *Subscription) {
		o.OnComplete()
	})
}

// Never emits nothing and never terminates.
func Never[T any]() Observable[T] {
	return Create(func(_ Observer[T], _ *Subscription) {})
}

// Just emits the given values and completes.
func Just[T any](values ...T) Observable[T] {
	return Create(func(o Observer[T], _ *Subscription) {
		for _, v := range values {
			o.OnNext(v)
		}
		o.OnComplete()
	})
}

func Map[T, R any](src Observable[T], fn func(T) R) Observable[R] {
	return Create(func(o Observer[R], sub *Subscription) {
		inner := src.Subscribe(Observer[T]{
			Next: func(v T) { o.OnNext(fn(v)) },
			Err:  func(err error) { o.OnError(err) },
			Done: func() { o.OnComplete() },
		})
		sub.Add(inner.Unsubscribe)
	})
}

func Filter[T any](src Observable[T], keep func(T) bool) Observable[T] {
	return Create(func(o Observer[T], sub *Subscription) {
		inner := src.Subscribe(Observer[T]{
			Next: func(v T) {
				if keep(v) {
					o.OnNext(v)
				}
			},
			Err:  func(err error) { o.OnError(err) },
			Done: func() { o.OnComplete() },
		})
		sub.Add(inner.Unsubscribe)
	})
}

// DistinctUntilChanged suppresses consecutive emissions that eq reports
// as equal.
func DistinctUntilChanged[T any](src Observable[T], eq func(a, b T) bool) Observable[T] {
	return Create(func(o Observer[T], sub *Subscription) {
		var (
			has  bool
			last T
		)
		inner := src.Subscribe(Observer[T]{
			Next: func(v T) {
				if has && eq(last, v) {
					return
				}
				has = true
				last = v
				o.OnNext(v)
			},
			Err:  func(err error) { o.OnError(err) },
			Done: func() { o.OnComplete() },
		})
		sub.Add(inner.Unsubscribe)
	})
}

// Merge interleaves the sources into one stream. It completes once
// every source has completed; any source error propagates and tears the
// rest down.
func Merge[T any](sources ...Observable[T]) Observable[T] {
	return Create(func(o Observer[T], sub *Subscription) {
		if len(sources) == 0 {
			o.OnComplete()
			return
		}
		var mu sync.Mutex
		remaining := len(sources)
		for _, src := range sources {
			inner := src.Subscribe(Observer[T]{
				Next: func(v T) { o.OnNext(v) },
				Err:  func(err error) { o.OnError(err) },
				Done: func() {
					mu.Lock()
					remaining--
					last := remaining == 0
					mu.Unlock()
					if last {
						o.OnComplete()
					}
				},
			})
			sub.Add(inner.Unsubscribe)
		}
	})
}
