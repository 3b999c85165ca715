package printer

import (
	"bytes"
	"io"
	"sync"
)

type heldBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (h *heldBuffer) Write(b []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Write(b)
}

func (h *heldBuffer) drain(w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.buf.Len() == 0 {
		return nil
	}
	_, err := h.buf.WriteTo(w)
	return err
}

// Hold returns a printer whose output, including errors, is kept in memory
// until release is called. Interactive forms own the terminal while they
// run; lines printed between forms would otherwise be redrawn over.
//
// release writes everything held to p's output and may be called more than
// once.
func (p *Printer) Hold() (held *Printer, release func() error) {
	buf := &heldBuffer{}
	held = &Printer{out: buf, err: buf, color: p.color}
	return held, func() error { return buf.drain(p.out) }
}
