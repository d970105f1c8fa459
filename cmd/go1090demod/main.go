// Command go1090demod runs the Mode S / ADS-B demodulation pipeline
// against a captured I/Q recording and prints every trusted frame it
// recovers in the canonical "*hex;" wire form.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"modes1090/demod"
)

var (
	inputPath   string
	confidence  int
	timeoutSecs int
	verbose     bool
)

func main() {
	root := &cobra.Command{
		Use:     "go1090demod",
		Short:   "Demodulate 1090MHz Mode S / ADS-B frames from a raw I/Q recording",
		Version: "0.1.0",
		RunE:    run,
	}

	root.Flags().StringVarP(&inputPath, "input", "i", "-", "path to a raw 8-bit unsigned I/Q recording, or - for stdin")
	root.Flags().IntVarP(&confidence, "confidence", "c", int(demod.Medium), "address-parity sightings required to trust an unverified ICAO (1=Low, 2=Medium, 5=High)")
	root.Flags().IntVarP(&timeoutSecs, "timeout", "t", 180, "seconds an ICAO24 may go unseen before it is evicted")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	r, closeFn, err := openInput(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer closeFn()

	cfg := demod.Config{
		Confidence: demod.ConfidenceLevel(confidence),
		Timeout:    time.Duration(timeoutSecs) * time.Second,
	}

	decoder := demod.NewDecoder(cfg, func(f demod.RawFrame) {
		fmt.Println(f.String())
	})

	br := bufio.NewReaderSize(r, 1<<20)
	buf := make([]byte, 1<<16)
	samples := make([]demod.IQSample, 0, len(buf)/2)

	reportTicker := time.NewTicker(5 * time.Second)
	defer reportTicker.Stop()
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-reportTicker.C:
				reportStats(log, decoder)
			case <-stop:
				return
			}
		}
	}()
	defer close(stop)

	for {
		n, err := br.Read(buf)
		if n > 0 {
			samples = samples[:0]
			for i := 0; i+1 < n; i += 2 {
				samples = append(samples, demod.IQSample{I: buf[i], Q: buf[i+1]})
			}
			if decErr := decoder.Demodulate(samples); decErr != nil {
				return fmt.Errorf("demodulate: %w", decErr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}

	reportStats(log, decoder)
	return nil
}

func reportStats(log *logrus.Logger, d *demod.Decoder) {
	s := d.Stats()
	log.WithFields(logrus.Fields{
		"samples":   s.SamplesProcessed,
		"preambles": s.PreamblesMatched,
		"sliced":    s.FramesSliced,
		"rejected":  s.FramesRejected,
		"emitted":   s.FramesEmitted,
		"promoted":  s.Promotions,
	}).Info("demodulator stats")
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
