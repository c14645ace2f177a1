package audiobuffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
)

func TestCloneDoesNotAliasOriginal(t *testing.T) {
	t.Parallel()

	b := audiobuffer.New(2, 4)
	b.Set(0, 0, 0.5)

	clone := b.Clone()
	clone.Set(0, 0, 0.9)

	assert.Equal(t, float32(0.5), b.Get(0, 0))
	assert.Equal(t, float32(0.9), clone.Get(0, 0))
}

func TestElementWiseTruncatesToSmallerChannelCount(t *testing.T) {
	t.Parallel()

	a := audiobuffer.New(2, 2)
	a.Set(0, 0, 1)
	a.Set(1, 0, 1)

	b := audiobuffer.New(1, 2)
	b.Set(0, 0, 3)

	a.Add(b)

	assert.Equal(t, float32(4), a.Get(0, 0))
	assert.Equal(t, float32(1), a.Get(1, 0), "channel 1 has no counterpart in b and is untouched")
}

func TestElementWiseRequiresMatchingFrameCount(t *testing.T) {
	t.Parallel()

	a := audiobuffer.New(1, 4)
	b := audiobuffer.New(1, 8)

	assert.Panics(t, func() { a.Add(b) })
}

func TestGainAndAddScalar(t *testing.T) {
	t.Parallel()

	b := audiobuffer.New(1, 2)
	b.Set(0, 0, 2)
	b.Set(0, 1, -2)

	b.Gain(0.5)
	assert.Equal(t, float32(1), b.Get(0, 0))
	assert.Equal(t, float32(-1), b.Get(0, 1))

	b.AddScalar(1)
	assert.Equal(t, float32(2), b.Get(0, 0))
	assert.Equal(t, float32(0), b.Get(0, 1))
}

func TestMixIntoBroadcastsMonoToEveryChannel(t *testing.T) {
	t.Parallel()

	out := audiobuffer.New(2, 2)
	mono := audiobuffer.New(1, 2)
	mono.Set(0, 0, 0.25)
	mono.Set(0, 1, -0.25)

	out.MixInto(mono)

	assert.Equal(t, float32(0.25), out.Get(0, 0))
	assert.Equal(t, float32(0.25), out.Get(1, 0), "mono source must reach every output channel")
	assert.Equal(t, float32(-0.25), out.Get(0, 1))
	assert.Equal(t, float32(-0.25), out.Get(1, 1))
}

func TestMixIntoSumsMatchingChannelCounts(t *testing.T) {
	t.Parallel()

	out := audiobuffer.New(2, 1)
	out.Set(0, 0, 1)
	out.Set(1, 0, 1)

	src := audiobuffer.New(2, 1)
	src.Set(0, 0, 2)
	src.Set(1, 0, 3)

	out.MixInto(src)

	assert.Equal(t, float32(3), out.Get(0, 0))
	assert.Equal(t, float32(4), out.Get(1, 0))
}

func TestZero(t *testing.T) {
	t.Parallel()

	b := audiobuffer.New(2, 2)
	b.Gain(1) // no-op, buffer already zero
	b.AddScalar(1)
	b.Zero()

	for c := 0; c < 2; c++ {
		for f := 0; f < 2; f++ {
			require.Equal(t, float32(0), b.Get(c, f))
		}
	}
}
