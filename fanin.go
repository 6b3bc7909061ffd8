package propwire

import (
	"reflect"

	"github.com/propwire/propwire/chain"
	"github.com/propwire/propwire/stream"
)

// ObservePaths fuses one chain per path into a single stream of
// snapshots with latest-value semantics: the first snapshot appears
// once every path has produced a value, and after that every change on
// any path emits a snapshot combining it with the others' cached
// values. The typed ObservePathsN variants project the snapshot onto a
// tuple struct.
func ObservePaths(root any, paths ...string) (stream.Observable[[]any], error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	rootType := reflect.TypeOf(root)
	sources := make([]stream.Observable[any], len(paths))
	for i, p := range paths {
		c, err := chain.Parse(rootType, p, chain.Options{Distinct: true})
		if err != nil {
			return nil, err
		}
		sources[i] = c.Observe(root, nil)
	}
	return stream.CombineLatest(sources...), nil
}

type Tuple2[T0, T1 any] struct {
	Arg0 T0
	Arg1 T1
}

type Tuple3[T0, T1, T2 any] struct {
	Arg0 T0
	Arg1 T1
	Arg2 T2
}

type Tuple4[T0, T1, T2, T3 any] struct {
	Arg0 T0
	Arg1 T1
	Arg2 T2
	Arg3 T3
}

type Tuple5[T0, T1, T2, T3, T4 any] struct {
	Arg0 T0
	Arg1 T1
	Arg2 T2
	Arg3 T3
	Arg4 T4
}

type Tuple6[T0, T1, T2, T3, T4, T5 any] struct {
	Arg0 T0
	Arg1 T1
	Arg2 T2
	Arg3 T3
	Arg4 T4
	Arg5 T5
}

type Tuple7[T0, T1, T2, T3, T4, T5, T6 any] struct {
	Arg0 T0
	Arg1 T1
	Arg2 T2
	Arg3 T3
	Arg4 T4
	Arg5 T5
	Arg6 T6
}

type Tuple8[T0, T1, T2, T3, T4, T5, T6, T7 any] struct {
	Arg0 T0
	Arg1 T1
	Arg2 T2
	Arg3 T3
	Arg4 T4
	Arg5 T5
	Arg6 T6
	Arg7 T7
}

func ObservePaths2[T0, T1 any](root any, p0, p1 string) (stream.Observable[Tuple2[T0, T1]], error) {
	src, err := ObservePaths(root, p0, p1)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) Tuple2[T0, T1] {
		return Tuple2[T0, T1]{
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
		}
	}), nil
}

func ObservePaths3[T0, T1, T2 any](root any, p0, p1, p2 string) (stream.Observable[Tuple3[T0, T1, T2]], error) {
	src, err := ObservePaths(root, p0, p1, p2)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) Tuple3[T0, T1, T2] {
		return Tuple3[T0, T1, T2]{
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
		}
	}), nil
}

func ObservePaths4[T0, T1, T2, T3 any](root any, p0, p1, p2, p3 string) (stream.Observable[Tuple4[T0, T1, T2, T3]], error) {
	src, err := ObservePaths(root, p0, p1, p2, p3)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) Tuple4[T0, T1, T2, T3] {
		return Tuple4[T0, T1, T2, T3]{
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
		}
	}), nil
}

func ObservePaths5[T0, T1, T2, T3, T4 any](root any, p0, p1, p2, p3, p4 string) (stream.Observable[Tuple5[T0, T1, T2, T3, T4]], error) {
	src, err := ObservePaths(root, p0, p1, p2, p3, p4)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) Tuple5[T0, T1, T2, T3, T4] {
		return Tuple5[T0, T1, T2, T3, T4]{
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
			zeroOnMiss[T4](vs[4]),
		}
	}), nil
}

func ObservePaths6[T0, T1, T2, T3, T4, T5 any](root any, p0, p1, p2, p3, p4, p5 string) (stream.Observable[Tuple6[T0, T1, T2, T3, T4, T5]], error) {
	src, err := ObservePaths(root, p0, p1, p2, p3, p4, p5)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) Tuple6[T0, T1, T2, T3, T4, T5] {
		return Tuple6[T0, T1, T2, T3, T4, T5]{
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
			zeroOnMiss[T4](vs[4]),
			zeroOnMiss[T5](vs[5]),
		}
	}), nil
}

func ObservePaths7[T0, T1, T2, T3, T4, T5, T6 any](root any, p0, p1, p2, p3, p4, p5, p6 string) (stream.Observable[Tuple7[T0, T1, T2, T3, T4, T5, T6]], error) {
	src, err := ObservePaths(root, p0, p1, p2, p3, p4, p5, p6)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) Tuple7[T0, T1, T2, T3, T4, T5, T6] {
		return Tuple7[T0, T1, T2, T3, T4, T5, T6]{
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
			zeroOnMiss[T4](vs[4]),
			zeroOnMiss[T5](vs[5]),
			zeroOnMiss[T6](vs[6]),
		}
	}), nil
}

func ObservePaths8[T0, T1, T2, T3, T4, T5, T6, T7 any](root any, p0, p1, p2, p3, p4, p5, p6, p7 string) (stream.Observable[Tuple8[T0, T1, T2, T3, T4, T5, T6, T7]], error) {
	src, err := ObservePaths(root, p0, p1, p2, p3, p4, p5, p6, p7)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) Tuple8[T0, T1, T2, T3, T4, T5, T6, T7] {
		return Tuple8[T0, T1, T2, T3, T4, T5, T6, T7]{
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
			zeroOnMiss[T4](vs[4]),
			zeroOnMiss[T5](vs[5]),
			zeroOnMiss[T6](vs[6]),
			zeroOnMiss[T7](vs[7]),
		}
	}), nil
}
