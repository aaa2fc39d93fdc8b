// Command ringscope plays a WAV file through the circular visualizer in a
// terminal.
//
// Usage:
//
//	ringscope music.wav
//	ringscope -config ringscope.yaml -fps 30 music.wav
//	ringscope -envelope music.env -log ringscope.log music.wav
//
// Keys: space plays and pauses, left and right seek, up and down change the
// volume, q or escape quits. Click or drag on the outer band to seek.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/gdamore/tcell/v2"

	ringscope "github.com/tphakala/go-audio-ringscope"
	"github.com/tphakala/go-audio-ringscope/internal/analysis"
	"github.com/tphakala/go-audio-ringscope/internal/host"
	"github.com/tphakala/go-audio-ringscope/internal/render/term"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a YAML config file")
	fps := flag.Int("fps", defaultFPS, "Target frames per second")
	envelopePath := flag.String("envelope", "", "Read the seek band from a \"min max\" pairs file instead of the WAV")
	firPath := flag.String("fir", "", "Load the ring interpolation table from a fir-table file")
	logPath := flag.String("log", "", "Write log output to this file")
	paused := flag.Bool("paused", false, "Start paused")
	verbose := flag.Bool("v", false, "Print frame statistics on exit")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
		return errors.New("insufficient arguments")
	}
	inputPath := args[0]

	cfg := ringscope.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = ringscope.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *firPath != "" {
		cfg.Filter.Path = *firPath
	}

	// The terminal owns stdout and stderr while the visualizer runs.
	logger := log.New(io.Discard, "", 0)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		logger = log.New(f, "", log.LstdFlags)
	}

	tr, err := decodeWAV(inputPath)
	if err != nil {
		return err
	}
	logger.Printf("Input: %s, %d Hz, %d frames (%v)", inputPath, tr.rate, tr.frames, tr.Duration())

	params := analysis.DefaultParams(cfg.CQBins, float64(tr.rate))
	tap := analysis.NewTap(params.FFTSize * tapCapacityFactor)
	source, err := analysis.NewSource(tap, params)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.Clear()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := host.NewTicker(ctx, *fps)

	// The seek handler needs the player and the player reports to the
	// visualizer, so the handler is bound after both exist.
	var p *player
	vis, err := ringscope.New(cfg, nil, ringscope.WithLogger(logger),
		ringscope.WithSeekHandler(func(position float64) {
			if p != nil {
				p.SeekTo(position)
			}
		}))
	if err != nil {
		return err
	}
	defer vis.Close()

	p = newPlayer(tr, tap, source, vis, ticker.Now)
	vis.SetSource(p)

	if err := vis.Mount(term.Factory(screen)); err != nil {
		return err
	}
	resize(vis, screen)

	if *envelopePath != "" {
		vis.SetTrack(ringscope.PairsEnvelope(*envelopePath))
	} else {
		vis.SetTrack(tr.envelope(cfg.EnvelopeBuckets))
	}
	if !*paused {
		p.Toggle()
	}

	if err := vis.Start(ticker); err != nil {
		return err
	}

	loop := &eventLoop{vis: vis, player: p, source: source}
	loop.run(ctx, screen)
	vis.Stop()

	if *verbose {
		screen.Fini()
		stats := vis.GetStatistics()
		for _, k := range slices.Sorted(maps.Keys(stats)) {
			fmt.Printf("%-16s %d\n", k, stats[k])
		}
	}
	return nil
}

// resize sizes the visualizer to the terminal, one CSS pixel per braille dot.
func resize(vis *ringscope.Visualizer, screen tcell.Screen) {
	cols, rows := screen.Size()
	vis.Resize(float64(cols*dotsPerCellX), float64(rows*dotsPerCellY), 1)
}
