package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/propwire/propwire"
	"github.com/propwire/propwire/notify"
	"github.com/propwire/propwire/stream"
)

const (
	itersKey   = "iters"
	depthsKey  = "depths"
	profileKey = "profile"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure propagation latency through observed property chains",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Mutations per configuration",
				Value: 1000,
			},
			&cli.StringFlag{
				Name:  depthsKey,
				Usage: "Comma-separated chain depths",
				Value: "1,5,10,25",
			},
			&cli.BoolFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to default.pgo",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type gadget struct {
	notify.Broadcaster
	Next  *gadget
	Label string
}

func (g *gadget) SetNext(n *gadget) {
	g.Next = n
	g.Changed("Next")
}

func (g *gadget) SetLabel(v string) {
	g.Label = v
	g.Changed("Label")
}

// buildChain nests depth gadgets under root and returns the dotted
// path to the deepest Label together with the gadget that owns it.
func buildChain(depth int) (root *gadget, path string, leaf *gadget) {
	root = &gadget{}
	cur := root
	for i := 0; i < depth; i++ {
		next := &gadget{}
		cur.Next = next
		cur = next
	}
	cur.Label = "v0"
	path = strings.Repeat("Next.", depth) + "Label"
	return root, path, cur
}

func run(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Print("chain propagation benchmark started")
	defer func() {
		log.Printf("chain propagation benchmark finished in %v", time.Since(start))
	}()

	if cmd.Bool(profileKey) {
		f, err := os.Create("default.pgo")
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Uint(itersKey))
	var depths []int
	for _, part := range strings.Split(cmd.String(depthsKey), ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("bad depth %q: %w", part, err)
		}
		if d < 1 {
			return fmt.Errorf("bad depth %d: must be at least 1", d)
		}
		depths = append(depths, d)
	}

	tbl := table.NewWriter()
	tbl.SetTitle("Property Chain Propagation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, depth := range depths {
		if err := benchmarkLeafUpdate(tbl, depth, iters); err != nil {
			return err
		}
		if err := benchmarkRewire(tbl, depth, iters); err != nil {
			return err
		}
	}

	tbl.Render()
	return nil
}

// benchmarkLeafUpdate mutates the deepest property and times how long
// the emission takes to clear the chain.
func benchmarkLeafUpdate(tbl table.Writer, depth, iters int) error {
	root, path, leaf := buildChain(depth)

	src, err := propwire.ObservePath[string](root, path)
	if err != nil {
		return err
	}

	emissions := 0
	sub := src.Subscribe(stream.Observer[string]{
		Next: func(string) { emissions++ },
	})
	defer sub.Unsubscribe()

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		leaf.SetLabel(fmt.Sprintf("v%d", i+1))
		tach.AddTime(time.Since(start))
	}

	if want := iters + 1; emissions != want {
		return fmt.Errorf("depth %d: expected %d emissions, got %d", depth, want, emissions)
	}

	appendCalc(tbl, fmt.Sprintf("leaf update: depth %d", depth), tach)
	return nil
}

// benchmarkRewire replaces the first hop every iteration, forcing the
// engine to tear down and resubscribe the entire downstream subtree.
func benchmarkRewire(tbl table.Writer, depth, iters int) error {
	root, path, _ := buildChain(depth)

	src, err := propwire.ObservePath[string](root, path, propwire.KeepDuplicates())
	if err != nil {
		return err
	}

	sub := src.Subscribe(stream.Observer[string]{})
	defer sub.Unsubscribe()

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		replacement, _, _ := buildChain(depth - 1)
		start := time.Now()
		root.SetNext(replacement)
		tach.AddTime(time.Since(start))
	}

	appendCalc(tbl, fmt.Sprintf("rewire: depth %d", depth), tach)
	return nil
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRows([]table.Row{
		{
			name,
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		},
	})
}
