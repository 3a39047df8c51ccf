package transport

import "io"

// pipeConn adapts a pair of io.Pipe halves into a single io.ReadWriteCloser,
// wiring an in-process peer without a real socket.
type pipeConn struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p pipeConn) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p pipeConn) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p pipeConn) Close() error {
	werr := p.w.Close()
	rerr := p.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// NewLoopback returns a connected pair of Transports backed by in-memory
// pipes rather than a socket. Used for tests and for in-process coupling
// of two participants that happen to share an address space.
func NewLoopback(participantA string, rankA int, participantB string, rankB int) (*Transport, *Transport) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	a := Wrap(participantA, rankA, pipeConn{r: ar, w: aw})
	b := Wrap(participantB, rankB, pipeConn{r: br, w: bw})
	return a, b
}
