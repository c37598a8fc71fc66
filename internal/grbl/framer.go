package grbl

import "bytes"

// lineDelimiter is what GRBL terminates every reply with.
var lineDelimiter = []byte("\r\n")

// LineFramer converts an arbitrarily chunked byte stream into discrete
// protocol lines. Bytes that arrive without a terminator stay buffered
// across Push calls; nothing is dropped or duplicated and line order is
// exactly the arrival order.
type LineFramer struct {
	buf []byte
}

// NewLineFramer returns an empty framer.
func NewLineFramer() *LineFramer {
	return &LineFramer{}
}

// Push appends a chunk and returns every complete line it closes, with
// the delimiter stripped. Returns nil when no line completed.
func (f *LineFramer) Push(chunk []byte) []string {
	f.buf = append(f.buf, chunk...)

	var lines []string
	for {
		i := bytes.Index(f.buf, lineDelimiter)
		if i < 0 {
			break
		}
		lines = append(lines, string(f.buf[:i]))
		f.buf = f.buf[i+len(lineDelimiter):]
	}

	// Reset the backing array once drained so a long session does not
	// keep growing the slice capacity.
	if len(f.buf) == 0 {
		f.buf = nil
	}
	return lines
}

// Flush emits whatever is still buffered as a final partial line. Used on
// stream end.
func (f *LineFramer) Flush() (string, bool) {
	if len(f.buf) == 0 {
		return "", false
	}
	line := string(f.buf)
	f.buf = nil
	return line, true
}
