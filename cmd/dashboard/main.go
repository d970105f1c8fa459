// Command dashboard is a terminal UI showing live Mode S / ADS-B traffic,
// adapted from the reference implementation's gocui dashboard: instead of
// decoded aircraft state (altitude, flight, position — out of scope here)
// it shows every trusted ICAO24 address, the downlink format it was last
// seen on, and how long ago that was.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/awesome-gocui/gocui"
	. "github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"

	"modes1090/demod"
)

type trackEntry struct {
	df       demod.DownlinkFormat
	lastSeen time.Time
	count    uint64
}

// Context owns the decoder and the last-seen table the dashboard renders.
// tracks is written from the decoder's async worker goroutine (onFrame) and
// read/mutated from the independent 1s stale-sweep and 200ms redraw timer
// goroutines (removeStale, update), so all three paths take mu.
type Context struct {
	decoder *demod.Decoder

	mu     sync.Mutex
	tracks map[uint32]*trackEntry
}

func NewContext(cfg demod.Config) *Context {
	ctx := &Context{tracks: make(map[uint32]*trackEntry)}
	ctx.decoder = demod.NewDecoder(cfg, ctx.onFrame)
	return ctx
}

func (ctx *Context) onFrame(f demod.RawFrame) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	t, ok := ctx.tracks[f.ICAO]
	if !ok {
		t = &trackEntry{}
		ctx.tracks[f.ICAO] = t
	}
	t.df = f.DF
	t.lastSeen = time.Now()
	t.count++
}

func (ctx *Context) removeStale(timeout time.Duration) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	now := time.Now()
	for icao, t := range ctx.tracks {
		if now.Sub(t.lastSeen) > timeout {
			delete(ctx.tracks, icao)
		}
	}
}

func (ctx *Context) update(g *gocui.Gui) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	s, err := g.View("status")
	if err != nil {
		return nil
	}
	s.Clear()
	fmt.Fprintf(s, " ICAO24s: %02d  LAST UPDATE: %s\n",
		Green(len(ctx.tracks)),
		Bold(Green(time.Now().Format("2006-01-02 15:04:05"))))

	l, err := g.View("list")
	if err != nil {
		return nil
	}
	l.Clear()

	fmt.Fprintln(l, " ICAO24   DF     MSGS  SEEN")
	fmt.Fprintln(l, " ========================================")

	addrs := make([]uint32, 0, len(ctx.tracks))
	for addr := range ctx.tracks {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	for _, addr := range addrs {
		t := ctx.tracks[addr]
		fmt.Fprintln(l, Sprintf(Yellow(" %06X   %-5s  %-5d  %s"),
			addr, t.df.String(), t.count, time.Since(t.lastSeen).Round(time.Second)))
	}

	return nil
}

func layout(g *gocui.Gui) error {
	const maxX = 80
	_, maxY := g.Size()

	v, err := g.SetView("status", 0, 0, maxX-2, 2, 0)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Title = " STATUS "
	fmt.Fprintln(v, " ICAO24s: --  LAST UPDATE: 0000-00-00 00:00:00")

	v, err = g.SetView("list", 0, 3, maxX-2, maxY-1, 0)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Title = " TRAFFIC "
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

func main() {
	var inputPath string
	var confidence int
	var timeoutSecs int

	root := &cobra.Command{
		Use:   "dashboard",
		Short: "Live terminal dashboard of trusted Mode S / ADS-B ICAO24 traffic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(inputPath, demod.ConfidenceLevel(confidence), time.Duration(timeoutSecs)*time.Second)
		},
	}
	root.Flags().StringVarP(&inputPath, "input", "i", "-", "path to a raw 8-bit unsigned I/Q recording, or - for stdin")
	root.Flags().IntVarP(&confidence, "confidence", "c", int(demod.Medium), "address-parity sightings required to trust an unverified ICAO")
	root.Flags().IntVarP(&timeoutSecs, "timeout", "t", 180, "seconds an ICAO24 may go unseen before it drops off the display")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDashboard(inputPath string, confidence demod.ConfidenceLevel, timeout time.Duration) error {
	g, err := gocui.NewGui(gocui.OutputNormal, false)
	if err != nil {
		log.Panicln(err)
	}
	defer g.Close()

	g.SetManagerFunc(layout)
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		log.Panicln(err)
	}

	ctx := NewContext(demod.Config{Confidence: confidence, Timeout: timeout})

	r, closeFn, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer closeFn()

	queue := newSampleReaderQueue(r)
	if err := ctx.decoder.StartAsync(queue); err != nil {
		log.Panicln(err)
	}
	defer ctx.decoder.Stop()

	go func() {
		for range time.Tick(time.Second) {
			ctx.removeStale(timeout)
			g.Update(ctx.update)
		}
	}()

	go func() {
		for range time.Tick(200 * time.Millisecond) {
			g.Update(ctx.update)
		}
	}()

	if err := g.MainLoop(); err != nil && !gocui.IsQuit(err) {
		log.Panicln(err)
	}
	return nil
}

func openInput(path string) (*os.File, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
