package device

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/ryanjeffares/ral-go/pkg/audiodevice"
)

// blockSize is the pull granularity used by sinks that have no driver or
// file-format block size of their own to honour.
const blockSize = 480

// NoneSink discards every block pulled from its Source. Used to run a
// program purely for its print/println side effects, with no audio
// destination at all.
type NoneSink struct {
	logger     *slog.Logger
	properties audiodevice.DeviceProperties
}

// NewNoneSink creates a NoneSink reporting properties when asked, though
// nothing it produces is ever written anywhere. Its run is tagged with a
// fresh UUID so repeated renders in the same process are distinguishable
// in the logs.
func NewNoneSink(properties audiodevice.DeviceProperties) *NoneSink {
	logger := slog.Default().With("sink", "none", "runUUID", uuid.New().String())
	return &NoneSink{logger: logger, properties: properties}
}

// Run pulls and discards blocks until src is exhausted.
func (s *NoneSink) Run(src audiodevice.Source) error {
	s.logger.Debug("discarding rendered blocks")
	for {
		if _, ok := src.Next(blockSize); !ok {
			return nil
		}
	}
}

func (s *NoneSink) GetDeviceProperties() audiodevice.DeviceProperties { return s.properties }

func (s *NoneSink) Close() error { return nil }
