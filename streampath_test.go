package propwire_test

import (
	"testing"

	propwire "github.com/propwire/propwire"
	"github.com/propwire/propwire/notify"
	"github.com/propwire/propwire/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hub struct {
	notify.Broadcaster
	Ticks  *stream.Subject[int]
	Quotes *stream.Subject[string]
}

func (h *hub) SetTicks(s *stream.Subject[int]) {
	h.Ticks = s
	h.Changed("Ticks")
}

func (h *hub) SetQuotes(s *stream.Subject[string]) {
	h.Quotes = s
	h.Changed("Quotes")
}

func TestObserveStreamPathMirrorsLeafStream(t *testing.T) {
	root := &hub{Ticks: stream.NewSubject[int]()}

	src, err := propwire.ObserveStreamPath[int](root, "Ticks")
	require.NoError(t, err)

	var values []int
	src.Subscribe(stream.Observer[int]{
		Next: func(v int) { values = append(values, v) },
	})

	root.Ticks.Next(1)
	root.Ticks.Next(2)
	assert.Equal(t, []int{1, 2}, values)
}

func TestObserveStreamPathSwitchesToNewestStream(t *testing.T) {
	first := stream.NewSubject[int]()
	root := &hub{Ticks: first}

	src, err := propwire.ObserveStreamPath[int](root, "Ticks")
	require.NoError(t, err)

	var values []int
	src.Subscribe(stream.Observer[int]{
		Next: func(v int) { values = append(values, v) },
	})

	first.Next(1)

	second := stream.NewSubject[int]()
	root.SetTicks(second)

	// the superseded stream is still live; its values must not leak
	first.Next(99)
	assert.Equal(t, []int{1}, values)

	second.Next(2)
	assert.Equal(t, []int{1, 2}, values)
}

func TestObserveStreamPathNilLeafActsAsEmpty(t *testing.T) {
	root := &hub{}

	src, err := propwire.ObserveStreamPath[int](root, "Ticks")
	require.NoError(t, err)

	var values []int
	src.Subscribe(stream.Observer[int]{
		Next: func(v int) { values = append(values, v) },
	})
	assert.Empty(t, values)

	ticks := stream.NewSubject[int]()
	root.SetTicks(ticks)
	ticks.Next(5)
	assert.Equal(t, []int{5}, values)
}

func TestObserveStreamPaths2FusesSwitchedStreams(t *testing.T) {
	root := &hub{
		Ticks:  stream.NewSubject[int](),
		Quotes: stream.NewSubject[string](),
	}

	src, err := propwire.ObserveStreamPaths2[int, string](root, "Ticks", "Quotes")
	require.NoError(t, err)

	var tuples []propwire.Tuple2[int, string]
	src.Subscribe(stream.Observer[propwire.Tuple2[int, string]]{
		Next: func(v propwire.Tuple2[int, string]) { tuples = append(tuples, v) },
	})

	root.Ticks.Next(1)
	assert.Empty(t, tuples, "waits until every stream has produced a value")

	root.Quotes.Next("a")
	require.Len(t, tuples, 1)
	assert.Equal(t, propwire.Tuple2[int, string]{Arg0: 1, Arg1: "a"}, tuples[0])

	root.Ticks.Next(2)
	require.Len(t, tuples, 2)
	assert.Equal(t, propwire.Tuple2[int, string]{Arg0: 2, Arg1: "a"}, tuples[1])
}
