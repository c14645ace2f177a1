package device

import (
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"

	"github.com/ryanjeffares/ral-go/pkg/audiodevice"
)

// deviceBlockSize is the number of frames the real-time callback asks
// its Source for per pull. oto's player pulls through an io.Reader on
// its own goroutine at whatever cadence its driver callback demands;
// this is simply the chunk size bufferSourceReader hands back on each
// successful Read.
const deviceBlockSize = 256

const bytesPerSample = 4 // float32

// bufferSourceReader adapts a pull-based audiodevice.Source to the
// io.Reader oto.NewPlayer expects: each Read call pulls one more block
// from the Source (once its own carried-over bytes are exhausted) and
// returns io.EOF once the Source reports no more audio, which lets the
// player wind down and Run return.
type bufferSourceReader struct {
	src      audiodevice.Source
	channels int
	pending  []byte
	done     bool
}

func (r *bufferSourceReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		if r.done {
			return 0, io.EOF
		}
		buf, ok := r.src.Next(deviceBlockSize)
		if !ok {
			r.done = true
			return 0, io.EOF
		}
		frames := buf.Frames()
		r.pending = make([]byte, 0, frames*r.channels*bytesPerSample)
		for f := 0; f < frames; f++ {
			for c := 0; c < r.channels; c++ {
				var b [bytesPerSample]byte
				binary.LittleEndian.PutUint32(b[:], math.Float32bits(buf.Get(c, f)))
				r.pending = append(r.pending, b[:]...)
			}
		}
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// DeviceSink plays every block pulled from its Source through the
// default output device in real time via oto, the same library the
// wider ecosystem uses to bind a raw PCM reader to a platform audio
// driver (CoreAudio/WASAPI/ALSA, chosen by oto itself).
type DeviceSink struct {
	logger     *slog.Logger
	properties audiodevice.DeviceProperties
	context    *oto.Context
	player     *oto.Player
}

// NewDeviceSink opens the default output device at the given sample rate
// and channel count, using 32-bit float samples throughout so no gain or
// headroom is lost converting from the engine's native float32 AudioBuffer.
func NewDeviceSink(sampleRate, channels int) (*DeviceSink, error) {
	logger := slog.Default().With("sink", "device", "sampleRate", sampleRate, "channels", channels, "runUUID", uuid.New().String())

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		logger.Error("could not open output device", "err", err)
		return nil, err
	}
	<-ready

	return &DeviceSink{
		logger:     logger,
		properties: audiodevice.DeviceProperties{SampleRate: sampleRate, NumChannels: channels},
		context:    ctx,
	}, nil
}

// Run plays src through the device until it is exhausted, blocking until
// playback has fully drained — not merely until the last block was
// handed to the driver, since the driver's own internal buffer still has
// to play out.
func (s *DeviceSink) Run(src audiodevice.Source) error {
	reader := &bufferSourceReader{src: src, channels: s.properties.NumChannels}
	s.player = s.context.NewPlayer(reader)
	s.player.Play()

	for s.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (s *DeviceSink) GetDeviceProperties() audiodevice.DeviceProperties { return s.properties }

// Close releases the player. The underlying driver context is left open,
// matching oto's own documented guidance that closing it is unsupported.
func (s *DeviceSink) Close() error {
	if s.player == nil {
		return errors.New("device sink: Close called before Run")
	}
	return s.player.Close()
}
