package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
	"github.com/ryanjeffares/ral-go/internal/value"
)

func TestResultType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   value.Type
		want   value.Type
		wantOK bool
	}{
		{"int+int", value.Int, value.Int, value.Int, true},
		{"int+float", value.Int, value.Float, value.Float, true},
		{"float+float", value.Float, value.Float, value.Float, true},
		{"audio+int", value.Audio, value.Int, value.Audio, true},
		{"int+audio", value.Int, value.Audio, value.Audio, true},
		{"audio+audio", value.Audio, value.Audio, value.Audio, true},
		{"string+string", value.String, value.String, value.String, true},
		{"string+int invalid", value.String, value.Int, 0, false},
		{"audio+string invalid", value.Audio, value.String, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := value.ResultType(tt.a, tt.b)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDefaultIsIntZero(t *testing.T) {
	t.Parallel()

	v := value.Default(value.Int)
	assert.Equal(t, value.Int, v.Type())
	assert.Equal(t, int64(0), v.GetInt())
}

func TestStringConcatenation(t *testing.T) {
	t.Parallel()

	got := value.Add(value.NewString("foo"), value.NewString("bar"))
	assert.Equal(t, "foobar", got.GetString())
}

func TestAudioArithmeticDoesNotMutateAliasedBuffer(t *testing.T) {
	t.Parallel()

	buf := audiobuffer.New(1, 4)
	buf.Set(0, 0, 1)
	buf.Set(0, 1, 2)

	a := value.NewAudio(buf)
	buf.Release() // a now holds the only application-visible reference

	result := value.Add(a, value.NewFloat(10))

	assert.Equal(t, float32(1), buf.Get(0, 0), "original buffer must be unmodified after a+x")
	assert.Equal(t, float32(2), buf.Get(0, 1))

	resultBuf := result.GetAudio()
	assert.Equal(t, float32(11), resultBuf.Get(0, 0))
	assert.Equal(t, float32(12), resultBuf.Get(0, 1))
}

func TestScalarMinusAudio(t *testing.T) {
	t.Parallel()

	buf := audiobuffer.New(1, 1)
	buf.Set(0, 0, 3)
	a := value.NewAudio(buf)
	buf.Release()

	result := value.Subtract(value.NewInt(10), a)
	assert.Equal(t, float32(7), result.GetAudio().Get(0, 0))
}

func TestWrongAccessorPanics(t *testing.T) {
	t.Parallel()

	v := value.NewInt(1)
	assert.Panics(t, func() { v.GetFloat() })
	assert.Panics(t, func() { v.GetString() })
	assert.Panics(t, func() { v.GetAudio() })
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "42", value.NewInt(42).Format())
	assert.Equal(t, "1.5", value.NewFloat(1.5).Format())
	assert.Equal(t, "hi", value.NewString("hi").Format())
}
