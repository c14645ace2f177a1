// Command ral is the score-synthesis runtime's CLI: it compiles a source
// file, builds the VM's instruments and score from the resulting
// program, and drives one of the three C10 output sinks (device, file,
// none) until the program's computed length has elapsed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
	"github.com/ryanjeffares/ral-go/internal/compiler"
	"github.com/ryanjeffares/ral-go/internal/config"
	"github.com/ryanjeffares/ral-go/internal/logging"
	"github.com/ryanjeffares/ral-go/internal/vm"
	"github.com/ryanjeffares/ral-go/pkg/audiodevice"
	"github.com/ryanjeffares/ral-go/pkg/audiodevice/device"
)

// minDeviceWait is the minimum time the device driver waits for playback
// to elapse, so a zero-length score still gets to run every event's
// init before the process exits.
const minDeviceWait = 100 * time.Millisecond

// Exit codes per spec.md §6/§7: success, then one code per error class
// so a caller can distinguish "fix your command line" from "fix your
// score" from "fix your environment".
const (
	exitSuccess = 0
	exitArgs    = 1
	exitIO      = 2
	exitCompile = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ral", flag.ContinueOnError)
	dac := fs.Bool("dac", false, "play through the default output device instead of writing a file")
	file := fs.Bool("file", false, "write output to the configured WAV path instead of discarding it")
	configFilePath := fs.String("config", "", "optional YAML config file path")
	if err := fs.Parse(args); err != nil {
		return exitArgs
	}
	// The flag package stops at the first positional argument, so keep
	// parsing after it to accept flags that follow the source path.
	var positional []string
	for fs.NArg() > 0 {
		positional = append(positional, fs.Arg(0))
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return exitArgs
		}
	}
	if len(positional) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ral <path-to-source> [--dac | --file]")
		return exitArgs
	}
	sourcePath := positional[0]

	if err := config.Load(*configFilePath); err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		return exitIO
	}

	logFile, err := logging.Configure(config.LogLevel(), config.LogFile(), slog.HandlerOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error configuring logger: %v\n", err)
		return exitIO
	}
	if logFile != nil {
		defer logFile.Close()
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		slog.Error("could not read source file", "path", sourcePath, "err", err)
		fmt.Fprintf(os.Stderr, "could not read source file %q: %v\n", sourcePath, err)
		return exitIO
	}

	program, diags := compiler.Compile(sourcePath, string(source))
	if diags.HadError() {
		fmt.Fprint(os.Stderr, diags.String())
		return exitCompile
	}

	start := time.Now()

	sampleRate := config.SampleRate()
	channels := config.Channels()

	machine := vm.New(sampleRate, os.Stdout)
	for _, name := range program.InstrumentOrder {
		machine.AddInstrument(program.Instruments[name])
	}
	for _, ev := range program.ScoreEvents {
		machine.AddScoreEvent(ev)
	}
	programLength := machine.Finalise()

	var sink audiodevice.Sink
	switch {
	case *dac:
		sink, err = device.NewDeviceSink(sampleRate, channels)
		if err != nil {
			slog.Error("could not open output device", "err", err)
			fmt.Fprintf(os.Stderr, "could not open output device: %v\n", err)
			return exitIO
		}
		machine.PreloadWavPaths()
	case *file:
		sink, err = device.NewFileSink(config.WavPath())
		if err != nil {
			slog.Error("could not open output file", "path", config.WavPath(), "err", err)
			fmt.Fprintf(os.Stderr, "could not open output file: %v\n", err)
			return exitIO
		}
	default:
		sink = device.NewNoneSink(audiodevice.DeviceProperties{SampleRate: sampleRate, NumChannels: channels})
	}
	defer func() {
		if err := sink.Close(); err != nil {
			slog.Debug("error closing output sink", "err", err)
		}
	}()

	props := sink.GetDeviceProperties()
	totalSamples := int64(math.Floor(programLength * float64(props.SampleRate)))
	if *dac {
		if min := int64(minDeviceWait.Seconds() * float64(props.SampleRate)); totalSamples < min {
			totalSamples = min
		}
	}

	src := &vmSource{vm: machine, channels: props.NumChannels, totalSamples: totalSamples}
	if err := sink.Run(src); err != nil {
		slog.Error("error during playback", "err", err)
		fmt.Fprintf(os.Stderr, "error during playback: %v\n", err)
		return exitIO
	}

	slog.Info("render complete", "elapsed", time.Since(start), "programLength", programLength)
	return exitSuccess
}

// vmSource adapts vm.VM's block-production call to the pull-based
// audiodevice.Source interface a C10 sink drains: each Next call asks the
// VM for one more block until the program's computed sample length has
// been produced.
type vmSource struct {
	vm           *vm.VM
	channels     int
	totalSamples int64
}

func (s *vmSource) Next(bufferSize int) (*audiobuffer.Buffer, bool) {
	if s.vm.SampleCounter() >= s.totalSamples {
		return nil, false
	}
	return s.vm.GetNextBuffer(s.channels, bufferSize), true
}
