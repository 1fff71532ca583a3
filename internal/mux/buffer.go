package mux

import "io"

// LineBuffer accumulates one child stream's raw bytes into log lines.
//
// Sanitizing rules: carriage returns are dropped, a line feed flushes the
// accumulated line, any other control byte (below space, or DEL) is replaced
// with a single space. A buffer that fills to capacity without a line feed is
// flushed anyway, bounding both memory and staleness.
//
// The cursor is always within [0, capacity): a flush resets it to zero and a
// full buffer is flushed before another byte is accepted.
type LineBuffer struct {
	w       *Writer
	tag     string
	stream  Stream
	buf     []byte
	pos     int
	scratch []byte
}

// NewLineBuffer creates an empty line buffer with the given capacity.
// Capacity must be at least 1.
func NewLineBuffer(w *Writer, tag string, stream Stream, capacity int) *LineBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &LineBuffer{
		w:       w,
		tag:     tag,
		stream:  stream,
		buf:     make([]byte, capacity),
		scratch: make([]byte, capacity),
	}
}

// flush emits the accumulated partial line and resets the cursor.
func (b *LineBuffer) flush() {
	b.w.Line(b.tag, b.stream, b.buf[:b.pos])
	b.pos = 0
}

// Consume runs the sanitizing scan over p, flushing completed lines.
func (b *LineBuffer) Consume(p []byte) {
	for _, c := range p {
		switch {
		case c == '\r':
			// dropped, consumes no buffer space
		case c == '\n':
			b.flush()
		case c < ' ' || c == 0x7F:
			b.buf[b.pos] = ' '
			b.pos++
		default:
			b.buf[b.pos] = c
			b.pos++
		}

		if b.pos == len(b.buf) {
			// Forced line wrap.
			b.flush()
		}
	}
}

// Pump performs one bounded read from r, never more than the buffer's free
// capacity, and consumes whatever arrives. A non-nil return (including
// io.EOF) means the stream must be treated as closed; any partial line has
// already been flushed.
func (b *LineBuffer) Pump(r io.Reader) error {
	n, err := r.Read(b.scratch[:len(b.buf)-b.pos])
	if n > 0 {
		b.Consume(b.scratch[:n])
	}
	if err != nil {
		b.Close()
		return err
	}
	return nil
}

// Close flushes any partial content as a final line. Empty buffers produce
// no output.
func (b *LineBuffer) Close() {
	if b.pos > 0 {
		b.flush()
	}
}

// Len returns the number of buffered bytes awaiting a line terminator.
func (b *LineBuffer) Len() int {
	return b.pos
}
