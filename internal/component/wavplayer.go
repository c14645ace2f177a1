package component

import (
	"os"
	"sync"

	"github.com/go-audio/wav"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
	"github.com/ryanjeffares/ral-go/internal/value"
)

// wavCache holds every WAV file opened by any WavPlayer instance so far,
// keyed by path and shared process-wide: a score that calls WavPlayer on
// the same file from many events decodes that file exactly once.
var (
	wavCacheMu sync.Mutex
	wavCache   = map[string][]float32{}
)

// loadWav decodes path to mono float32 samples in [-1, 1], mixing down a
// multichannel file by averaging its channels frame by frame, and caches
// the result. Decode failures cache a nil/empty slice so playback of a
// missing file is silence rather than a panic.
func loadWav(path string) []float32 {
	wavCacheMu.Lock()
	defer wavCacheMu.Unlock()

	if samples, ok := wavCache[path]; ok {
		return samples
	}

	samples := decodeWavMono(path)
	wavCache[path] = samples
	return samples
}

func decodeWavMono(path string) []float32 {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil
	}

	channels := buf.Format.NumChannels
	if channels < 1 || dec.BitDepth < 1 {
		return nil
	}
	// The decoder yields integer samples at the file's bit depth; divide
	// by full scale to bring them into [-1, 1].
	scale := float64(uint64(1) << (dec.BitDepth - 1))

	floatBuf := buf.AsFloatBuffer()
	frames := len(floatBuf.Data) / channels
	mono := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += floatBuf.Data[f*channels+c]
		}
		mono[f] = float32(sum / float64(channels) / scale)
	}
	return mono
}

// PreloadWav decodes and caches path ahead of first use. Callers that must
// keep WAV decoding off a real-time audio callback (see the VM's
// PreloadWavPaths) call this during finalisation for every WavPlayer call
// site whose path argument is a literal.
func PreloadWav(path string) {
	loadWav(path)
}

// WavPlayer streams a decoded WAV file sample by sample, advancing a
// per-instance read position so two concurrently active events playing
// the same file read independently. Playback falls silent once the file
// is exhausted rather than looping or erroring.
type WavPlayer struct {
	index int
}

// NewWavPlayer creates a WavPlayer instance at the start of its file.
func NewWavPlayer() *WavPlayer { return &WavPlayer{} }

// Process fills one block from the cached decode of args[0], broadcasting
// the mono signal identically across every output channel, and leaves
// trailing frames silent once the source is exhausted.
func (w *WavPlayer) Process(info StreamInfo, args []value.Value) value.Value {
	path := args[0].GetString()
	samples := loadWav(path)

	buf := audiobuffer.New(info.Channels, info.BufferSize)
	for f := 0; f < info.BufferSize; f++ {
		var s float32
		if w.index < len(samples) {
			s = samples[w.index]
			w.index++
		}
		for c := 0; c < info.Channels; c++ {
			buf.Set(c, f, s)
		}
	}

	v := value.NewAudio(buf)
	buf.Release()
	return v
}
