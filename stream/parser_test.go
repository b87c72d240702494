package stream

import (
	"testing"

	"github.com/axmq/mqttcore/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingreqBytes() []byte {
	return []byte{0xC0, 0x00}
}

func connackBytes() []byte {
	return []byte{0x20, 0x02, 0x00, 0x00}
}

func TestParserSingleFrameBulk(t *testing.T) {
	p := NewParser()
	frames, err := p.Feed(connackBytes())
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, connackBytes(), frames[0].Data)
}

func TestParserSingleFramePerByte(t *testing.T) {
	p := NewParser()
	data := connackBytes()
	var got *Frame
	for i, b := range data {
		frame, err := p.FeedByte(b)
		require.NoError(t, err)
		if i < len(data)-1 {
			assert.Nil(t, frame)
		} else {
			got = frame
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, data, got.Data)
}

func TestParserZeroLengthPayload(t *testing.T) {
	p := NewParser()
	frames, err := p.Feed(pingreqBytes())
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, pingreqBytes(), frames[0].Data)
}

func TestParserTwoFramesInOneFeed(t *testing.T) {
	p := NewParser()
	combined := append(append([]byte{}, connackBytes()...), pingreqBytes()...)
	frames, err := p.Feed(combined)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, connackBytes(), frames[0].Data)
	assert.Equal(t, pingreqBytes(), frames[1].Data)
}

// A valid packet stream split arbitrarily across Feed calls must yield the
// same frames as feeding it unsplit.
func TestParserSplitAcrossCalls(t *testing.T) {
	data := connackBytes()
	for split := 0; split <= len(data); split++ {
		p := NewParser()
		var frames []Frame
		if split > 0 {
			f1, err := p.Feed(data[:split])
			require.NoError(t, err)
			frames = append(frames, f1...)
		}
		f2, err := p.Feed(data[split:])
		require.NoError(t, err)
		frames = append(frames, f2...)

		require.Len(t, frames, 1)
		assert.Equal(t, data, frames[0].Data)
	}
}

func TestParserMultiBytePayload(t *testing.T) {
	// PUBLISH, flags 0, remaining length 130 (two varint bytes: 0x82 0x01)
	payload := make([]byte, 130)
	for i := range payload {
		payload[i] = byte(i)
	}
	data := append([]byte{0x30, 0x82, 0x01}, payload...)

	p := NewParser()
	frames, err := p.Feed(data)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, data, frames[0].Data)
}

// A 5th continuation byte in the remaining-length field is packet_too_large.
func TestParserMalformedRemainingLength(t *testing.T) {
	p := NewParser()
	frames, err := p.Feed([]byte{0x30, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F})
	assert.ErrorIs(t, err, encoding.ErrVariableByteIntegerTooLarge)
	assert.Empty(t, frames)
	assert.Equal(t, encoding.ReasonPacketTooLarge, encoding.GetReasonCode(err))
}

func TestParserResetAfterError(t *testing.T) {
	p := NewParser()
	_, err := p.Feed([]byte{0x30, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F})
	require.Error(t, err)

	frames, err := p.Feed(connackBytes())
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, connackBytes(), frames[0].Data)
}
