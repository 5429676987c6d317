package density

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(id uint32) *Event {
	ev := NewEvent()
	ev.RunNumber = 295585
	ev.EventID = id
	ev.VertexZ = -3.25
	ev.LowFlux = id%2 == 0
	ev.SetSignal(Rings[0], 0, 0, 1.25)
	ev.SetSignal(Rings[4], 39, 255, 0.75)
	return ev
}

func TestEventRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	for id := uint32(1); id <= 2; id++ {
		require.NoError(t, WriteEvent(&buf, testEvent(id)))
	}
	assert.Equal(t, 2*(headerSize+PayloadSize()), buf.Len())

	r := bytes.NewReader(buf.Bytes())
	for id := uint32(1); id <= 2; id++ {
		header, payload, err := ReadEventFromFile(r)
		require.NoError(t, err)
		assert.Equal(t, id, header.EventID)
		ev, err := DecodeEvent(header, payload)
		require.NoError(t, err)
		if diff := cmp.Diff(testEvent(id), ev); diff != "" {
			t.Errorf("event %d mismatch (-want +got):\n%s", id, diff)
		}
	}
	_, _, err := ReadEventFromFile(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestEventFlags(t *testing.T) {
	ev := testEvent(2)
	ev.Error = true
	raw, err := EncodeEvent(ev)
	require.NoError(t, err)

	header, payload, err := ReadEventFromFile(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, FlagLowFlux|FlagError, header.Flags)
	decoded, err := DecodeEvent(header, payload)
	require.NoError(t, err)
	assert.True(t, decoded.LowFlux)
	assert.True(t, decoded.Error)
}

func TestReadTruncatedEvent(t *testing.T) {
	raw, err := EncodeEvent(testEvent(1))
	require.NoError(t, err)

	_, _, err = ReadEventFromFile(bytes.NewReader(raw[:len(raw)-10]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, _, err = ReadEventFromFile(bytes.NewReader(raw[:headerSize/2]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadBadEvent(t *testing.T) {
	raw, err := EncodeEvent(testEvent(1))
	require.NoError(t, err)
	raw[0] ^= 0xff

	_, _, err = ReadEventFromFile(bytes.NewReader(raw))
	var bad *ErrBadEvent
	require.True(t, errors.As(err, &bad))
	assert.Equal(t, uint32(1), bad.EventID)

	_, err = DecodeEvent(EventHeader{Magic: EventMagic, EventID: 4}, make([]byte, 12))
	assert.ErrorAs(t, err, &bad)

	ev := testEvent(3)
	ev.Rings[2].Eta = ev.Rings[2].Eta[:10]
	_, err = EncodeEvent(ev)
	assert.ErrorAs(t, err, &bad)
}
