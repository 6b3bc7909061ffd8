package propwire

import (
	"reflect"

	"github.com/propwire/propwire/chain"
	"github.com/propwire/propwire/stream"
)

// ObserveStreamPath treats the leaf of the path as itself a stream and
// mirrors whichever inner stream the leaf currently references. When
// the leaf is replaced the previous inner stream is unsubscribed before
// the new one is selected, so stale values never reach the output. A
// nil leaf substitutes a stream that completes immediately.
func ObserveStreamPath[T any](root any, path string, opts ...Option) (stream.Observable[T], error) {
	c, err := chain.Parse(reflect.TypeOf(root), path, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	outer := stream.Map(c.Observe(root, nil), func(v any) stream.Observable[T] {
		// a typed nil pointer still satisfies the interface assertion
		if s, ok := v.(stream.Observable[T]); ok && !isNilRef(v) {
			return s
		}
		return stream.Empty[T]()
	})
	return stream.SwitchLatest(outer), nil
}

func isNilRef(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ObserveStreamPaths2..4 fuse several stream-leaf paths with
// latest-value semantics, one switch-latest per path.

func ObserveStreamPaths2[T0, T1 any](root any, p0, p1 string) (stream.Observable[Tuple2[T0, T1]], error) {
	s0, err := ObserveStreamPath[T0](root, p0)
	if err != nil {
		return nil, err
	}
	s1, err := ObserveStreamPath[T1](root, p1)
	if err != nil {
		return nil, err
	}
	combined := stream.CombineLatest(erase(s0), erase(s1))
	return stream.Map(combined, func(vs []any) Tuple2[T0, T1] {
		return Tuple2[T0, T1]{
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
		}
	}), nil
}

func ObserveStreamPaths3[T0, T1, T2 any](root any, p0, p1, p2 string) (stream.Observable[Tuple3[T0, T1, T2]], error) {
	s0, err := ObserveStreamPath[T0](root, p0)
	if err != nil {
		return nil, err
	}
	s1, err := ObserveStreamPath[T1](root, p1)
	if err != nil {
		return nil, err
	}
	s2, err := ObserveStreamPath[T2](root, p2)
	if err != nil {
		return nil, err
	}
	combined := stream.CombineLatest(erase(s0), erase(s1), erase(s2))
	return stream.Map(combined, func(vs []any) Tuple3[T0, T1, T2] {
		return Tuple3[T0, T1, T2]{
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
		}
	}), nil
}

func ObserveStreamPaths4[T0, T1, T2, T3 any](root any, p0, p1, p2, p3 string) (stream.Observable[Tuple4[T0, T1, T2, T3]], error) {
	s0, err := ObserveStreamPath[T0](root, p0)
	if err != nil {
		return nil, err
	}
	s1, err := ObserveStreamPath[T1](root, p1)
	if err != nil {
		return nil, err
	}
	s2, err := ObserveStreamPath[T2](root, p2)
	if err != nil {
		return nil, err
	}
	s3, err := ObserveStreamPath[T3](root, p3)
	if err != nil {
		return nil, err
	}
	combined := stream.CombineLatest(erase(s0), erase(s1), erase(s2), erase(s3))
	return stream.Map(combined, func(vs []any) Tuple4[T0, T1, T2, T3] {
		return Tuple4[T0, T1, T2, T3]{
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
		}
	}), nil
}

func erase[T any](src stream.Observable[T]) stream.Observable[any] {
	return stream.Map(src, func(v T) any { return v })
}
