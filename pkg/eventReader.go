package density

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// EventMagic starts every event record ("FMDE").
const EventMagic uint32 = 0x45444d46

// Event flags.
const (
	FlagLowFlux uint32 = 1 << iota
	FlagError
)

// EventHeader is the fixed little-endian header of an event record. Size
// counts the header and the payload. The payload holds (signal, eta, phi)
// float32 triples for every strip of the rings in the order of Rings.
type EventHeader struct {
	Magic     uint32
	Size      uint32
	RunNumber uint32
	EventID   uint32
	Flags     uint32
	Reserved  uint32
	VertexZ   float64
}

var headerSize = binary.Size(EventHeader{})

const bytesPerStrip = 12

// PayloadSize is the size of the strip data of one event.
func PayloadSize() int {
	n := 0
	for _, ring := range Rings {
		n += ring.NChannels() * bytesPerStrip
	}
	return n
}

func ValidEvent(header EventHeader) bool {
	return header.Magic == EventMagic
}

// ReadEventFromFile reads the next record. It returns io.EOF when the reader
// is exhausted at a record boundary and io.ErrUnexpectedEOF for a truncated
// record.
func ReadEventFromFile(r io.Reader) (EventHeader, []byte, error) {
	var header EventHeader
	headerBinary := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBinary); err != nil {
		return header, nil, err
	}
	if err := binary.Read(bytes.NewReader(headerBinary), binary.LittleEndian, &header); err != nil {
		return header, nil, err
	}
	if !ValidEvent(header) {
		return header, nil, &ErrBadEvent{EventID: header.EventID, Reason: fmt.Sprintf("bad magic 0x%08x", header.Magic)}
	}
	if int(header.Size) < headerSize {
		return header, nil, &ErrBadEvent{EventID: header.EventID, Reason: fmt.Sprintf("size %d smaller than header", header.Size)}
	}

	payload := make([]byte, int(header.Size)-headerSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return header, nil, err
	}
	return header, payload, nil
}

// DecodeEvent builds the event of a record read by ReadEventFromFile.
func DecodeEvent(header EventHeader, payload []byte) (*Event, error) {
	if len(payload) != PayloadSize() {
		return nil, &ErrBadEvent{
			EventID: header.EventID,
			Reason:  fmt.Sprintf("payload has %d bytes, expected %d", len(payload), PayloadSize()),
		}
	}
	ev := &Event{
		RunNumber: header.RunNumber,
		EventID:   header.EventID,
		VertexZ:   header.VertexZ,
		LowFlux:   header.Flags&FlagLowFlux != 0,
		Error:     header.Flags&FlagError != 0,
	}
	position := 0
	readFloat := func() float32 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(payload[position:]))
		position += 4
		return v
	}
	for i, ring := range Rings {
		n := ring.NChannels()
		data := RingData{
			Signal: make([]float32, n),
			Eta:    make([]float32, n),
			Phi:    make([]float32, n),
		}
		for c := 0; c < n; c++ {
			data.Signal[c] = readFloat()
			data.Eta[c] = readFloat()
			data.Phi[c] = readFloat()
		}
		ev.Rings[i] = data
	}
	return ev, nil
}

// EncodeEvent serialises an event into a record.
func EncodeEvent(ev *Event) ([]byte, error) {
	header := EventHeader{
		Magic:     EventMagic,
		Size:      uint32(headerSize + PayloadSize()),
		RunNumber: ev.RunNumber,
		EventID:   ev.EventID,
		VertexZ:   ev.VertexZ,
	}
	if ev.LowFlux {
		header.Flags |= FlagLowFlux
	}
	if ev.Error {
		header.Flags |= FlagError
	}

	buf := bytes.NewBuffer(make([]byte, 0, header.Size))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	word := make([]byte, 4)
	writeFloat := func(v float32) {
		binary.LittleEndian.PutUint32(word, math.Float32bits(v))
		buf.Write(word)
	}
	for i, ring := range Rings {
		data := ev.Rings[i]
		if len(data.Signal) != ring.NChannels() || len(data.Eta) != ring.NChannels() || len(data.Phi) != ring.NChannels() {
			return nil, &ErrBadEvent{EventID: ev.EventID, Reason: fmt.Sprintf("wrong number of channels in %v", ring)}
		}
		for c := range data.Signal {
			writeFloat(data.Signal[c])
			writeFloat(data.Eta[c])
			writeFloat(data.Phi[c])
		}
	}
	return buf.Bytes(), nil
}

func WriteEvent(w io.Writer, ev *Event) error {
	raw, err := EncodeEvent(ev)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}
