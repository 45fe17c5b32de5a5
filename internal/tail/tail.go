// Package tail keeps the last few diagnostic lines of a subprocess.
package tail

import "strings"

// DefaultCapacity is the number of lines kept when New is given n <= 0.
const DefaultCapacity = 12

// Buffer is a fixed capacity FIFO of lines; the oldest line is evicted
// first. It is not safe for concurrent use.
type Buffer struct {
	lines []string
	next  int
	full  bool
}

func New(n int) *Buffer {
	if n <= 0 {
		n = DefaultCapacity
	}
	return &Buffer{lines: make([]string, n)}
}

// Add appends a line, evicting the oldest one when the buffer is full.
func (b *Buffer) Add(line string) {
	b.lines[b.next] = line
	b.next = (b.next + 1) % len(b.lines)
	if b.next == 0 {
		b.full = true
	}
}

func (b *Buffer) Len() int {
	if b.full {
		return len(b.lines)
	}
	return b.next
}

func (b *Buffer) Cap() int { return len(b.lines) }

// Lines returns the buffered lines, oldest first.
func (b *Buffer) Lines() []string {
	if !b.full {
		return append([]string(nil), b.lines[:b.next]...)
	}
	out := make([]string, 0, len(b.lines))
	out = append(out, b.lines[b.next:]...)
	return append(out, b.lines[:b.next]...)
}

func (b *Buffer) String() string {
	return strings.Join(b.Lines(), "\n")
}
