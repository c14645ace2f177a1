// Package audiodevice binds the VM / scheduler to an output sink (C10):
// a pull-based Source/Sink pair that converts each produced AudioBuffer
// into the destination's sample format. Unlike a push/channel pipeline,
// the sink calls Next itself, so each sink is free to pace pulls however
// its destination needs to — a real-time callback pulling one block per
// driver interrupt, or a file/none sink pulling as fast as it can until
// the source is exhausted.
package audiodevice

import "github.com/ryanjeffares/ral-go/internal/audiobuffer"

// DeviceProperties describes the fixed format a Sink was opened with.
type DeviceProperties struct {
	SampleRate  int
	NumChannels int
}

// Source produces one block of bufferSize frames, at the channel count
// the sink requested it be opened with, per call. ok is false once the
// program has no more audio to produce (its computed length has elapsed);
// Next must not be called again after that.
type Source interface {
	Next(bufferSize int) (buf *audiobuffer.Buffer, ok bool)
}

// Sink drains a Source to completion. Run blocks until the source is
// exhausted — for the file and none sinks that means returning as soon
// as the last block is pulled; the device sink's Run blocks until the
// driver has finished playing everything it was handed, which happens at
// the same point since the underlying reader reports EOF once its
// Source is exhausted.
type Sink interface {
	Run(src Source) error
	GetDeviceProperties() DeviceProperties
	Close() error
}
