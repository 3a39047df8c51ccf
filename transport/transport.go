// Package transport implements the bidirectional, reliable, ordered byte
// channel two participant ranks use to exchange typed primitives and
// arrays. Wire format is bit-compatible across implementations: fixed
// primitives are raw little-endian (int32 two's-complement, float64
// IEEE-754), variable-length payloads are length-prefixed. The byte order
// is little-endian on every host; it does not follow the host's native
// order on a big-endian machine. There is no
// magic number and no version tag — this is a deliberate compatibility
// constraint, not an oversight.
//
// Any I/O error is fatal: a coupling cannot recover from a lost
// participant, so every Send/Receive method here returns an
// *errs.Diagnostic of kind TransportError and callers are expected to
// abort rather than retry.
package transport

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/mpcouple/coupler/errs"
)

// Transport is an ordered, reliable point-to-point byte channel to one
// peer rank. Messages sent on a given Transport are delivered in send
// order; there is no ordering guarantee across distinct Transports.
type Transport struct {
	participant string
	rank        int
	rw          io.ReadWriteCloser
	r           *bufio.Reader
	w           *bufio.Writer
}

// Wrap adapts an already-established byte stream (a TCP connection, an
// io.Pipe half, anything implementing io.ReadWriteCloser) into a Transport.
func Wrap(participant string, rank int, rw io.ReadWriteCloser) *Transport {
	return &Transport{
		participant: participant,
		rank:        rank,
		rw:          rw,
		r:           bufio.NewReader(rw),
		w:           bufio.NewWriter(rw),
	}
}

// Close releases the underlying stream.
func (t *Transport) Close() error {
	return t.rw.Close()
}

func (t *Transport) fatal(err error) error {
	if err == nil {
		return nil
	}
	return errs.Transport(t.participant, t.rank, err)
}

// SendInt writes a single two's-complement 32-bit int, little-endian.
func (t *Transport) SendInt(v int) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(int32(v)))
	if _, err := t.w.Write(buf[:]); err != nil {
		return t.fatal(err)
	}
	return t.fatal(t.w.Flush())
}

// ReceiveInt blocks until a 4-byte int has arrived.
func (t *Transport) ReceiveInt() (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(t.r, buf[:]); err != nil {
		return 0, t.fatal(err)
	}
	return int(int32(binary.LittleEndian.Uint32(buf[:]))), nil
}

// SendDouble writes a single IEEE-754 float64, little-endian.
func (t *Transport) SendDouble(v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], floatBits(v))
	if _, err := t.w.Write(buf[:]); err != nil {
		return t.fatal(err)
	}
	return t.fatal(t.w.Flush())
}

// ReceiveDouble blocks until an 8-byte double has arrived.
func (t *Transport) ReceiveDouble() (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(t.r, buf[:]); err != nil {
		return 0, t.fatal(err)
	}
	return bitsToFloat(binary.LittleEndian.Uint64(buf[:])), nil
}

// SendBool writes a single byte: 1 for true, 0 for false.
func (t *Transport) SendBool(v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	if err := t.w.WriteByte(b); err != nil {
		return t.fatal(err)
	}
	return t.fatal(t.w.Flush())
}

// ReceiveBool blocks until a single byte has arrived.
func (t *Transport) ReceiveBool() (bool, error) {
	b, err := t.r.ReadByte()
	if err != nil {
		return false, t.fatal(err)
	}
	return b != 0, nil
}

// SendString writes a length-prefixed UTF-8 string.
func (t *Transport) SendString(v string) error {
	if err := t.SendInt(len(v)); err != nil {
		return err
	}
	if _, err := t.w.WriteString(v); err != nil {
		return t.fatal(err)
	}
	return t.fatal(t.w.Flush())
}

// ReceiveString blocks until a length-prefixed string has fully arrived.
func (t *Transport) ReceiveString() (string, error) {
	n, err := t.ReceiveInt()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.r, buf); err != nil {
		return "", t.fatal(err)
	}
	return string(buf), nil
}

// SendDoubleArray writes an explicit length prefix followed by that many
// little-endian float64s.
func (t *Transport) SendDoubleArray(v []float64) error {
	if err := t.SendInt(len(v)); err != nil {
		return err
	}
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], floatBits(f))
	}
	if _, err := t.w.Write(buf); err != nil {
		return t.fatal(err)
	}
	return t.fatal(t.w.Flush())
}

// ReceiveDoubleArray blocks until all expected bytes of a double array
// have arrived.
func (t *Transport) ReceiveDoubleArray() ([]float64, error) {
	n, err := t.ReceiveInt()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(t.r, buf); err != nil {
		return nil, t.fatal(err)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = bitsToFloat(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return out, nil
}

// SendIntArray writes an explicit length prefix followed by that many
// little-endian int32s.
func (t *Transport) SendIntArray(v []int) error {
	if err := t.SendInt(len(v)); err != nil {
		return err
	}
	buf := make([]byte, 4*len(v))
	for i, n := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(n)))
	}
	if _, err := t.w.Write(buf); err != nil {
		return t.fatal(err)
	}
	return t.fatal(t.w.Flush())
}

// ReceiveIntArray blocks until all expected bytes of an int array have
// arrived.
func (t *Transport) ReceiveIntArray() ([]int, error) {
	n, err := t.ReceiveInt()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(t.r, buf); err != nil {
		return nil, t.fatal(err)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = int(int32(binary.LittleEndian.Uint32(buf[i*4:])))
	}
	return out, nil
}
