package device

import (
	"log/slog"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/ryanjeffares/ral-go/pkg/audiodevice"
)

// wavFloatFormat is the WAV "fmt " chunk audio format code for IEEE-754
// float samples, as opposed to 1 (integer PCM).
const wavFloatFormat = 3

// fileBlockSize is the file sink's fixed pull granularity: one hundredth
// of a second at its fixed 48 kHz rate.
const fileBlockSize = 480

// FileSink writes every block pulled from its Source to a 32-bit float
// WAV file at a fixed 48 kHz, 2-channel configuration, converting each
// sample to its IEEE-754 bit pattern before handing it to go-audio/wav's
// integer-oriented encoder — the encoder only ever copies each Data
// entry's low bitDepth bits to the file, so handing it the bit-reinterpreted
// float32 (via math.Float32bits) at bit depth 32 with audio format 3
// produces a standards-conformant float WAV without needing a
// float-native encoder.
type FileSink struct {
	logger     *slog.Logger
	properties audiodevice.DeviceProperties
	fileHandle *os.File
	encoder    *wav.Encoder
}

// NewFileSink creates a FileSink writing to path at the spec's fixed
// 48 kHz / 2-channel / 32-bit-float configuration.
func NewFileSink(path string) (*FileSink, error) {
	logger := slog.Default().With("sink", "file", "path", path, "runUUID", uuid.New().String())

	f, err := os.Create(path)
	if err != nil {
		logger.Error("could not create output file", "err", err)
		return nil, err
	}

	const sampleRate = 48000
	const numChannels = 2
	encoder := wav.NewEncoder(f, sampleRate, 32, numChannels, wavFloatFormat)

	return &FileSink{
		logger:     logger,
		properties: audiodevice.DeviceProperties{SampleRate: sampleRate, NumChannels: numChannels},
		fileHandle: f,
		encoder:    encoder,
	}, nil
}

// Run pulls blocks of fileBlockSize frames from src until it is
// exhausted, writing each one's interleaved samples to the file, then
// finalises the WAV header and closes the file.
func (s *FileSink) Run(src audiodevice.Source) error {
	defer s.close()

	format := &goaudio.Format{SampleRate: s.properties.SampleRate, NumChannels: s.properties.NumChannels}
	for {
		buf, ok := src.Next(fileBlockSize)
		if !ok {
			return nil
		}

		frames := buf.Frames()
		channels := buf.Channels()
		data := make([]int, frames*channels)
		for f := 0; f < frames; f++ {
			for c := 0; c < channels; c++ {
				data[f*channels+c] = int(math.Float32bits(buf.Get(c, f)))
			}
		}

		intBuf := &goaudio.IntBuffer{
			Format:         format,
			Data:           data,
			SourceBitDepth: 32,
		}
		if err := s.encoder.Write(intBuf); err != nil {
			s.logger.Error("error writing block to output file", "err", err)
			return err
		}
	}
}

func (s *FileSink) close() {
	if err := s.encoder.Close(); err != nil {
		s.logger.Error("error finalising WAV header", "err", err)
	}
	s.fileHandle.Sync()
	s.fileHandle.Close()
}

func (s *FileSink) GetDeviceProperties() audiodevice.DeviceProperties { return s.properties }

func (s *FileSink) Close() error { return nil }
