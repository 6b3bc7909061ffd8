package chain_test

import (
	"reflect"
	"testing"

	"github.com/propwire/propwire/accessor"
	"github.com/propwire/propwire/chain"
	"github.com/propwire/propwire/notify"
	"github.com/propwire/propwire/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type car struct {
	notify.Broadcaster
	Engine *engine
}

func (c *car) SetEngine(e *engine) {
	c.Engine = e
	c.Changed("Engine")
}

type engine struct {
	notify.Broadcaster
	Status string
	Power  int
}

func (e *engine) SetStatus(s string) {
	e.Status = s
	e.Changed("Status")
}

func (e *engine) SetPower(p int) {
	e.Changing("Power")
	e.Power = p
	e.Changed("Power")
}

// quiet has no notification contract at all; observation of it is
// degraded to a one-time read.
type quiet struct {
	Label string
}

func observe(t *testing.T, c *chain.Chain, root any) (*[]any, *stream.Subscription) {
	t.Helper()
	values := &[]any{}
	sub := c.Observe(root, accessor.NewResolver()).Subscribe(stream.Observer[any]{
		Next: func(v any) { *values = append(*values, v) },
		Err:  func(err error) { t.Fatalf("unexpected stream error: %v", err) },
	})
	return values, sub
}

func mustParse(t *testing.T, root any, path string, opts chain.Options) *chain.Chain {
	t.Helper()
	c, err := chain.Parse(reflect.TypeOf(root), path, opts)
	require.NoError(t, err)
	return c
}

func TestParseRejectsNonPropertyShapes(t *testing.T) {
	rootType := reflect.TypeOf(&car{})
	for _, path := range []string{
		"",
		"Engine..Status",
		"Engine.Status()",
		"Engine[0]",
		"Engine .Status",
		"1Engine",
	} {
		_, err := chain.Parse(rootType, path, chain.Options{})
		assert.ErrorIs(t, err, chain.ErrBadPath, "path %q", path)
	}
}

func TestParseProducesOrderedLinks(t *testing.T) {
	c := mustParse(t, &car{}, "Engine.Status", chain.Options{})

	require.Len(t, c.Links, 2)
	assert.Equal(t, "Engine", c.Links[0].Property)
	assert.Equal(t, reflect.TypeOf(&engine{}), c.Links[0].Value)
	assert.Equal(t, "Status", c.Links[1].Property)
	assert.Equal(t, reflect.TypeOf(""), c.Links[1].Value)
	assert.Equal(t, "Engine.Status", c.Path())
}

func TestParseCachesDecomposition(t *testing.T) {
	a := mustParse(t, &car{}, "Engine.Power", chain.Options{})
	b := mustParse(t, &car{}, "Engine.Power", chain.Options{Distinct: true})

	// same underlying link list, options vary per call site
	assert.Same(t, &a.Links[0], &b.Links[0])
	assert.NotEqual(t, a.Options(), b.Options())
}

func TestInitialValueEmittedOnSubscribe(t *testing.T) {
	root := &car{Engine: &engine{Status: "idle"}}
	c := mustParse(t, root, "Engine.Status", chain.Options{Distinct: true})

	values, _ := observe(t, c, root)
	assert.Equal(t, []any{"idle"}, *values)
}

func TestLeafChangePropagates(t *testing.T) {
	root := &car{Engine: &engine{Status: "idle"}}
	c := mustParse(t, root, "Engine.Status", chain.Options{Distinct: true})

	values, _ := observe(t, c, root)
	root.Engine.SetStatus("running")
	assert.Equal(t, []any{"idle", "running"}, *values)
}

func TestRewiringOnIntermediateReplacement(t *testing.T) {
	old := &engine{Status: "old"}
	root := &car{Engine: old}
	c := mustParse(t, root, "Engine.Status", chain.Options{Distinct: true})

	values, _ := observe(t, c, root)

	root.SetEngine(&engine{Status: "new"})
	assert.Equal(t, []any{"old", "new"}, *values, "exactly one emission per replacement")

	// the old engine's subscription is gone
	old.SetStatus("stale")
	assert.Equal(t, []any{"old", "new"}, *values)

	// and the new one is live
	root.Engine.SetStatus("hot")
	assert.Equal(t, []any{"old", "new", "hot"}, *values)
}

func TestNilMidChainYieldsAbsentLeaf(t *testing.T) {
	root := &car{Engine: &engine{Status: "idle"}}
	c := mustParse(t, root, "Engine.Status", chain.Options{Distinct: true})

	values, _ := observe(t, c, root)

	root.SetEngine(nil)
	require.Len(t, *values, 2)
	assert.Nil(t, (*values)[1])

	root.SetEngine(&engine{Status: "back"})
	assert.Equal(t, "back", (*values)[2])
}

func TestNilRootObservesWithoutError(t *testing.T) {
	c := mustParse(t, &car{}, "Engine.Status", chain.Options{Distinct: true})

	values, _ := observe(t, c, (*car)(nil))
	require.Len(t, *values, 1)
	assert.Nil(t, (*values)[0])
}

func TestDistinctSuppressesEqualValues(t *testing.T) {
	root := &car{Engine: &engine{Status: "same"}}
	c := mustParse(t, root, "Engine.Status", chain.Options{Distinct: true})

	values, _ := observe(t, c, root)
	root.Engine.SetStatus("same")
	root.Engine.SetStatus("same")
	assert.Equal(t, []any{"same"}, *values)
}

func TestKeepDuplicatesEmitsEqualValues(t *testing.T) {
	root := &car{Engine: &engine{Status: "same"}}
	c := mustParse(t, root, "Engine.Status", chain.Options{Distinct: false})

	values, _ := observe(t, c, root)
	root.Engine.SetStatus("same")
	root.Engine.SetStatus("same")
	assert.Equal(t, []any{"same", "same", "same"}, *values)
}

func TestSkipInitialWithholdsFirstValue(t *testing.T) {
	root := &car{Engine: &engine{Status: "idle"}}
	c := mustParse(t, root, "Engine.Status", chain.Options{Distinct: true, SkipInitial: true})

	values, _ := observe(t, c, root)
	assert.Empty(t, *values)

	root.Engine.SetStatus("running")
	assert.Equal(t, []any{"running"}, *values)
}

func TestSkipInitialStillSeedsDistinctBaseline(t *testing.T) {
	root := &car{Engine: &engine{Status: "idle"}}
	c := mustParse(t, root, "Engine.Status", chain.Options{Distinct: true, SkipInitial: true})

	values, _ := observe(t, c, root)
	root.Engine.Changed("Status")
	assert.Empty(t, *values, "re-announcing the initial value is not a change")
}

func TestBeforeChangeEmitsOutgoingValue(t *testing.T) {
	root := &engine{Power: 10}
	c := mustParse(t, root, "Power", chain.Options{Distinct: true, BeforeChange: true})

	values, _ := observe(t, c, root)
	root.SetPower(20)
	root.SetPower(30)

	// initial 10, then the value observed just before each commit
	assert.Equal(t, []any{10, 20}, *values)
}

func TestDegradedLinkReadsOnceAndGoesQuiet(t *testing.T) {
	root := &quiet{Label: "once"}
	c := mustParse(t, root, "Label", chain.Options{Distinct: true})

	values, _ := observe(t, c, root)
	assert.Equal(t, []any{"once"}, *values)

	root.Label = "changed silently"
	assert.Equal(t, []any{"once"}, *values)
}

func TestUnresolvablePropertySurfacesOnErrorChannel(t *testing.T) {
	root := &car{Engine: &engine{}}
	c, err := chain.Parse(reflect.TypeOf(root), "Engine.Missing", chain.Options{})
	require.NoError(t, err, "static parse cannot know every concrete type")

	var got error
	sub := c.Observe(root, accessor.NewResolver()).Subscribe(stream.Observer[any]{
		Next: func(any) { t.Fatal("no value expected") },
		Err:  func(e error) { got = e },
	})
	require.ErrorIs(t, got, accessor.ErrNoSuchProperty)
	assert.True(t, sub.Closed())
}

func TestDisposeStopsEmissionsAndIsIdempotent(t *testing.T) {
	root := &car{Engine: &engine{Status: "idle"}}
	c := mustParse(t, root, "Engine.Status", chain.Options{Distinct: true})

	values, sub := observe(t, c, root)
	sub.Unsubscribe()
	sub.Unsubscribe()

	root.Engine.SetStatus("running")
	root.SetEngine(&engine{Status: "other"})
	assert.Equal(t, []any{"idle"}, *values)
}

func TestIndependentActivationsShareOneChain(t *testing.T) {
	c := mustParse(t, &car{}, "Engine.Power", chain.Options{Distinct: true})

	a := &car{Engine: &engine{Power: 1}}
	b := &car{Engine: &engine{Power: 2}}

	res := accessor.NewResolver()
	var gotA, gotB []any
	c.Observe(a, res).Subscribe(stream.Observer[any]{
		Next: func(v any) { gotA = append(gotA, v) },
	})
	c.Observe(b, res).Subscribe(stream.Observer[any]{
		Next: func(v any) { gotB = append(gotB, v) },
	})

	a.Engine.SetPower(10)
	assert.Equal(t, []any{1, 10}, gotA)
	assert.Equal(t, []any{2}, gotB)
}
