package accessor_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/propwire/propwire/accessor"
	"github.com/propwire/propwire/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engine struct {
	notify.Broadcaster
	Power  int
	secret string
}

func (e *engine) SetPower(p int) {
	e.Changing("Power")
	e.Power = p
	e.Changed("Power")
}

func (e *engine) Rating() string {
	return "A+"
}

type plain struct {
	Value int
}

func TestResolveStructField(t *testing.T) {
	r := accessor.NewResolver()
	e := &engine{Power: 7}

	acc, err := r.Resolve(reflect.TypeOf(e), "Power")
	require.NoError(t, err)

	v, ok := acc.Get(e)
	require.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, reflect.TypeOf(0), acc.Value)
	assert.True(t, acc.CanTrack())
	assert.True(t, acc.CanTrackBefore())
}

func TestResolveMethodFallback(t *testing.T) {
	r := accessor.NewResolver()
	e := &engine{}

	acc, err := r.Resolve(reflect.TypeOf(e), "Rating")
	require.NoError(t, err)

	v, ok := acc.Get(e)
	require.True(t, ok)
	assert.Equal(t, "A+", v)
	assert.False(t, acc.TrySet(e, "B"), "method members are read-only")
}

func TestResolveMissingPropertyCachedFailure(t *testing.T) {
	r := accessor.NewResolver()
	e := &engine{}

	_, err := r.Resolve(reflect.TypeOf(e), "Nope")
	require.ErrorIs(t, err, accessor.ErrNoSuchProperty)

	_, err = r.Resolve(reflect.TypeOf(e), "Nope")
	require.ErrorIs(t, err, accessor.ErrNoSuchProperty)
	assert.EqualValues(t, 1, r.Resolutions(), "failures are cached, not retried")
}

func TestResolveUnexportedFieldRejected(t *testing.T) {
	r := accessor.NewResolver()

	_, err := r.Resolve(reflect.TypeOf(&engine{}), "secret")
	require.ErrorIs(t, err, accessor.ErrNoSuchProperty)
}

func TestTrySet(t *testing.T) {
	r := accessor.NewResolver()
	e := &engine{}

	acc, err := r.Resolve(reflect.TypeOf(e), "Power")
	require.NoError(t, err)

	assert.True(t, acc.TrySet(e, 42))
	assert.Equal(t, 42, e.Power)

	assert.False(t, acc.TrySet(e, "not an int"))
	assert.Equal(t, 42, e.Power)
}

func TestSubscribeChangedFiltersByName(t *testing.T) {
	r := accessor.NewResolver()
	e := &engine{}

	acc, err := r.Resolve(reflect.TypeOf(e), "Power")
	require.NoError(t, err)

	fired := 0
	stop := acc.SubscribeChanged(e, func() { fired++ })

	e.Changed("Other")
	assert.Zero(t, fired)

	e.SetPower(1)
	assert.Equal(t, 1, fired)

	// an unnamed notification means anything may have changed
	e.Changed("")
	assert.Equal(t, 2, fired)

	stop()
	e.SetPower(2)
	assert.Equal(t, 2, fired)
}

func TestDegradedAccessorNeverFires(t *testing.T) {
	r := accessor.NewResolver()
	p := &plain{Value: 3}

	acc, err := r.Resolve(reflect.TypeOf(p), "Value")
	require.NoError(t, err)
	assert.False(t, acc.CanTrack())

	stop := acc.SubscribeChanged(p, func() {
		t.Fatal("degraded accessor must not fire")
	})
	stop()

	v, ok := acc.Get(p)
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestGetThroughNilPointer(t *testing.T) {
	r := accessor.NewResolver()

	acc, err := r.Resolve(reflect.TypeOf((*plain)(nil)), "Value")
	require.NoError(t, err)

	_, ok := acc.Get((*plain)(nil))
	assert.False(t, ok)
}

func TestRegisterBypassesReflection(t *testing.T) {
	r := accessor.NewResolver()
	typ := reflect.TypeOf(&plain{})

	r.Register(typ, "Value", accessor.New(
		typ, "Value", reflect.TypeOf(0),
		func(obj any) (any, bool) { return obj.(*plain).Value * 10, true },
		nil,
	))

	acc, err := r.Resolve(typ, "Value")
	require.NoError(t, err)

	v, ok := acc.Get(&plain{Value: 4})
	require.True(t, ok)
	assert.Equal(t, 40, v)
	assert.Zero(t, r.Resolutions())
}

func TestConcurrentResolutionRunsOnce(t *testing.T) {
	r := accessor.NewResolver()
	typ := reflect.TypeOf(&engine{})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc, err := r.Resolve(typ, "Power")
			assert.NoError(t, err)
			assert.NotNil(t, acc)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, r.Resolutions())
}
