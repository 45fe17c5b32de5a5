// Package lines reassembles newline-terminated lines from arbitrarily
// chunked subprocess output.
package lines

import "strings"

// Framer buffers a partial trailing line between Feed calls. The zero
// value is ready to use. A Framer is not safe for concurrent use; give
// each stream its own.
type Framer struct {
	carry strings.Builder
}

// Feed appends chunk and returns every line it completes, in order, with
// the newline and any trailing carriage return removed. Bytes after the
// last newline stay buffered for the next call.
func (f *Framer) Feed(chunk []byte) []string {
	var out []string
	for len(chunk) > 0 {
		i := indexNewline(chunk)
		if i < 0 {
			f.carry.Write(chunk)
			break
		}
		f.carry.Write(chunk[:i])
		out = append(out, strings.TrimSuffix(f.carry.String(), "\r"))
		f.carry.Reset()
		chunk = chunk[i+1:]
	}
	return out
}

// Flush returns the buffered partial line, if any, and resets the framer.
// Call it once the stream reaches EOF.
func (f *Framer) Flush() (string, bool) {
	if f.carry.Len() == 0 {
		return "", false
	}
	s := strings.TrimSuffix(f.carry.String(), "\r")
	f.carry.Reset()
	return s, true
}

func indexNewline(b []byte) int {
	for i, c := range b {
		if c == '\n' {
			return i
		}
	}
	return -1
}
