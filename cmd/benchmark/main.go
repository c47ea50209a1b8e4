package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/tickflow/flow"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var cpuProfile = flag.String("cpuprofile", "", "write a cpu profile to this file")

func main() {
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkPropagate(false)
	benchmarkPropagate(true)
	benchmarkYield(true)
}

var (
	ww    = []int{1, 10, 100}
	hh    = []int{1, 10, 100, 1_000}
	iters = 100
)

// chain builds h watchers, each copying its predecessor plus one into the
// next channel, and returns the last channel.
func chain(tr *flow.Tracker, src *flow.Mutable[int], h int) (*flow.Mutable[int], error) {
	last := src
	for j := 0; j < h; j++ {
		prev := last
		next := flow.NewMutable(tr, "", 0)
		if _, err := tr.Watch(func() error {
			return next.Set(prev.Get() + 1)
		}); err != nil {
			return nil, err
		}
		last = next
	}
	return last, nil
}

func benchmarkPropagate(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Cascade propagation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "writes/s"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			// chains deeper than the default limit are intentional here
			tr := flow.NewTracker(flow.WithMaxDepth(0))
			src := flow.NewMutable(tr, "src", 1)
			for i := 0; i < w; i++ {
				last, err := chain(tr, src, h)
				if err != nil {
					log.Fatal(err)
				}
				if _, err := tr.Watch(func() error {
					last.Get()
					return nil
				}); err != nil {
					log.Fatal(err)
				}
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				if err := src.Set(src.Peek() + 1); err != nil {
					log.Fatal(err)
				}
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRow(table.Row{
				fmt.Sprintf("propagate: %d * %d", w, h),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
				humanize.Comma(int64(calc.Rate.Second)),
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkYield measures a write reaching the program output through a
// chain of watchers, the path every timer body takes.
func benchmarkYield(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Yield tracking")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "p99", "max", "writes/s"})

	for _, h := range hh {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		p := flow.NewProcState(flow.WithMaxDepth(0))
		src := p.Local("src", 0)
		last, err := chain(p.Tracker(), src, h)
		if err != nil {
			log.Fatal(err)
		}
		if _, err := p.Yield(last); err != nil {
			log.Fatal(err)
		}

		for i := 0; i < iters; i++ {
			start := time.Now()
			if _, err := p.Assign("src", i+1); err != nil {
				log.Fatal(err)
			}
			tach.AddTime(time.Since(start))
			if p.Output() != i+1+h {
				log.Fatalf("output %d, want %d", p.Output(), i+1+h)
			}
		}

		calc := tach.Calc()
		tbl.AppendRow(table.Row{
			fmt.Sprintf("yield: depth %d", h),
			calc.Time.Avg,
			calc.Time.P99,
			calc.Time.Max,
			humanize.Comma(int64(calc.Rate.Second)),
		})
	}

	if shouldRender {
		tbl.Render()
	}
}
