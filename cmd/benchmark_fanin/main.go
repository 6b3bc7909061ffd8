package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/propwire/propwire"
	"github.com/propwire/propwire/notify"
	"github.com/propwire/propwire/stream"
)

func main() {
	log.Print("Starting fan-in benchmark, please wait...")
	defer log.Print("Finished fan-in benchmark")

	cfgs := []faninTestConfig{
		{name: "pair", nPaths: 2, iterations: 500_000},
		{name: "quad", nPaths: 4, iterations: 250_000},
		{name: "full spread", nPaths: 8, iterations: 125_000},
	}

	type results struct {
		emissions int64
		duration  time.Duration
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"nPaths", "nTimes", "test", "time", "emissions", "updateRate",
	})

	testRepeats := 5
	for _, cfg := range cfgs {
		log.Printf("Running '%s' config", cfg.name)

		runOnce := func() (int64, error) {
			return runFanin(cfg.nPaths, cfg.iterations)
		}
		// run once to warm up
		if _, err := runOnce(); err != nil {
			log.Fatal(err)
		}

		bestResult := &results{duration: time.Hour}
		for i := 0; i < testRepeats; i++ {
			log.Printf("Running '%s' config, iteration %d/%d", cfg.name, i+1, testRepeats)
			start := time.Now()
			emissions, err := runOnce()
			if err != nil {
				log.Fatal(err)
			}
			duration := time.Since(start)

			if duration < bestResult.duration {
				bestResult.duration = duration
				bestResult.emissions = emissions
			}
		}

		updateRate := float64(bestResult.emissions) / (float64(bestResult.duration) / float64(time.Millisecond))

		table.Append([]string{
			fmt.Sprint(cfg.nPaths),
			humanize.Comma(cfg.iterations),
			cfg.name,
			fmt.Sprint(bestResult.duration),
			humanize.Comma(bestResult.emissions),
			humanize.Comma(int64(updateRate)),
		})
	}
	table.Render()
}

type faninTestConfig struct {
	name       string // friendly name for the test, should be unique
	nPaths     int    // how many properties feed the combined stream
	iterations int64  // mutations spread round-robin across the paths
}

// board carries one property per fan-in slot so a single instance can
// drive combined streams of any width up to eight.
type board struct {
	notify.Broadcaster
	V0, V1, V2, V3, V4, V5, V6, V7 int
}

var boardPaths = []string{"V0", "V1", "V2", "V3", "V4", "V5", "V6", "V7"}

func (b *board) bump(slot int, v int) {
	switch slot {
	case 0:
		b.V0 = v
	case 1:
		b.V1 = v
	case 2:
		b.V2 = v
	case 3:
		b.V3 = v
	case 4:
		b.V4 = v
	case 5:
		b.V5 = v
	case 6:
		b.V6 = v
	case 7:
		b.V7 = v
	default:
		panic("slot out of range")
	}
	b.Changed(boardPaths[slot])
}

// runFanin subscribes a combined stream across nPaths properties, then
// mutates them round-robin and counts the snapshots that come out.
func runFanin(nPaths int, iterations int64) (int64, error) {
	root := &board{}

	src, err := propwire.ObservePaths(root, boardPaths[:nPaths]...)
	if err != nil {
		return 0, err
	}

	var emissions int64
	sub := src.Subscribe(stream.Observer[[]any]{
		Next: func([]any) { emissions++ },
	})
	defer sub.Unsubscribe()

	for i := int64(0); i < iterations; i++ {
		root.bump(int(i)%nPaths, int(i)+1)
	}

	// every path starts with a value, so each mutation yields a snapshot
	if want := iterations + 1; emissions != want {
		return 0, fmt.Errorf("nPaths %d: expected %d emissions, got %d", nPaths, want, emissions)
	}
	return emissions, nil
}
