package propwire

import "github.com/propwire/propwire/stream"

// ObserveSelector1..8 are the fan-in operations followed by a per-tuple
// transform, for call sites that want a derived value instead of the
// raw tuple.

func ObserveSelector1[T0, R any](root any, p0 string, sel func(T0) R) (stream.Observable[R], error) {
	src, err := ObservePath[T0](root, p0)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, sel), nil
}

func ObserveSelector2[T0, T1, R any](root any, p0, p1 string, sel func(T0, T1) R) (stream.Observable[R], error) {
	src, err := ObservePaths(root, p0, p1)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) R {
		return sel(
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
		)
	}), nil
}

func ObserveSelector3[T0, T1, T2, R any](root any, p0, p1, p2 string, sel func(T0, T1, T2) R) (stream.Observable[R], error) {
	src, err := ObservePaths(root, p0, p1, p2)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) R {
		return sel(
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
		)
	}), nil
}

func ObserveSelector4[T0, T1, T2, T3, R any](root any, p0, p1, p2, p3 string, sel func(T0, T1, T2, T3) R) (stream.Observable[R], error) {
	src, err := ObservePaths(root, p0, p1, p2, p3)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) R {
		return sel(
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
		)
	}), nil
}

func ObserveSelector5[T0, T1, T2, T3, T4, R any](root any, p0, p1, p2, p3, p4 string, sel func(T0, T1, T2, T3, T4) R) (stream.Observable[R], error) {
	src, err := ObservePaths(root, p0, p1, p2, p3, p4)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) R {
		return sel(
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
			zeroOnMiss[T4](vs[4]),
		)
	}), nil
}

func ObserveSelector6[T0, T1, T2, T3, T4, T5, R any](root any, p0, p1, p2, p3, p4, p5 string, sel func(T0, T1, T2, T3, T4, T5) R) (stream.Observable[R], error) {
	src, err := ObservePaths(root, p0, p1, p2, p3, p4, p5)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) R {
		return sel(
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
			zeroOnMiss[T4](vs[4]),
			zeroOnMiss[T5](vs[5]),
		)
	}), nil
}

func ObserveSelector7[T0, T1, T2, T3, T4, T5, T6, R any](root any, p0, p1, p2, p3, p4, p5, p6 string, sel func(T0, T1, T2, T3, T4, T5, T6) R) (stream.Observable[R], error) {
	src, err := ObservePaths(root, p0, p1, p2, p3, p4, p5, p6)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) R {
		return sel(
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
			zeroOnMiss[T4](vs[4]),
			zeroOnMiss[T5](vs[5]),
			zeroOnMiss[T6](vs[6]),
		)
	}), nil
}

func ObserveSelector8[T0, T1, T2, T3, T4, T5, T6, T7, R any](root any, p0, p1, p2, p3, p4, p5, p6, p7 string, sel func(T0, T1, T2, T3, T4, T5, T6, T7) R) (stream.Observable[R], error) {
	src, err := ObservePaths(root, p0, p1, p2, p3, p4, p5, p6, p7)
	if err != nil {
		return nil, err
	}
	return stream.Map(src, func(vs []any) R {
		return sel(
			zeroOnMiss[T0](vs[0]),
			zeroOnMiss[T1](vs[1]),
			zeroOnMiss[T2](vs[2]),
			zeroOnMiss[T3](vs[3]),
			zeroOnMiss[T4](vs[4]),
			zeroOnMiss[T5](vs[5]),
			zeroOnMiss[T6](vs[6]),
			zeroOnMiss[T7](vs[7]),
		)
	}), nil
}
