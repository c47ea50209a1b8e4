package stats

import (
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/delaneyj/tickflow/flow"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/olekukonko/tablewriter"
)

const DefaultSamples = 1024

// Collector records how long ticks take. It satisfies sched.Observer.
type Collector struct {
	tach    *tachymeter.Tachymeter
	ticks   atomic.Int64
	started time.Time
}

func New(samples int) *Collector {
	if samples <= 0 {
		samples = DefaultSamples
	}
	return &Collector{
		tach:    tachymeter.New(&tachymeter.Config{Size: samples}),
		started: time.Now(),
	}
}

func (c *Collector) Observe(d time.Duration) {
	c.tach.AddTime(d)
	c.ticks.Add(1)
}

func (c *Collector) Ticks() int64 {
	return c.ticks.Load()
}

type Summary struct {
	Ticks   int64
	Elapsed time.Duration
	Avg     time.Duration
	Min     time.Duration
	P75     time.Duration
	P99     time.Duration
	Max     time.Duration
}

func (c *Collector) Summary() Summary {
	s := Summary{
		Ticks:   c.Ticks(),
		Elapsed: time.Since(c.started),
	}
	if s.Ticks == 0 {
		return s
	}
	calc := c.tach.Calc()
	s.Avg = calc.Time.Avg
	s.Min = calc.Time.Min
	s.P75 = calc.Time.P75
	s.P99 = calc.Time.P99
	s.Max = calc.Time.Max
	return s
}

// Render writes the tick latency table.
func (c *Collector) Render(w io.Writer, title string) {
	s := c.Summary()

	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"ticks", "elapsed", "avg", "min", "p75", "p99", "max"})
	tbl.AppendRow(table.Row{
		humanize.Comma(s.Ticks),
		s.Elapsed.Round(time.Millisecond),
		s.Avg,
		s.Min,
		s.P75,
		s.P99,
		s.Max,
	})
	tbl.Render()
}

// WriteChannels writes a snapshot of a program's channels.
func WriteChannels(w io.Writer, infos []flow.ChannelInfo) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"channel", "value", "subscribers"})
	for _, info := range infos {
		tw.Append([]string{
			info.Name,
			strconv.Itoa(info.Value),
			strconv.Itoa(info.Subscribers),
		})
	}
	tw.Render()
}
