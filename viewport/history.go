package viewport

import "image"

// DefaultHistoryDepth is the number of undo entries a Navigator keeps.
const DefaultHistoryDepth = 32

// Entry is one undo step: the controls in effect before a zoom and a
// thumbnail of the frame they produced.
type Entry struct {
	// Seq increases with every push and identifies the entry.
	Seq uint64

	Controls  Controls
	Thumbnail *image.RGBA
}

// History is a bounded undo stack. When full, pushing drops the oldest
// entry. History is not safe for concurrent use; Navigator guards it.
type History struct {
	entries []Entry
	depth   int
	seq     uint64
}

// NewHistory creates a stack holding at most depth entries. A depth below 1
// is treated as DefaultHistoryDepth.
func NewHistory(depth int) *History {
	if depth < 1 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth}
}

// Push records c and its thumbnail as the newest entry.
func (h *History) Push(c Controls, thumb *image.RGBA) Entry {
	h.seq++
	e := Entry{Seq: h.seq, Controls: c, Thumbnail: thumb}
	if len(h.entries) == h.depth {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, e)
	return e
}

// Pop removes and returns the newest entry.
func (h *History) Pop() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	last := len(h.entries) - 1
	e := h.entries[last]
	h.entries[last] = Entry{}
	h.entries = h.entries[:last]
	return e, true
}

// Peek returns the newest entry without removing it.
func (h *History) Peek() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Depth returns the capacity of the stack.
func (h *History) Depth() int {
	return h.depth
}

// Clear removes every entry.
func (h *History) Clear() {
	clear(h.entries)
	h.entries = h.entries[:0]
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (h *History) Recent(n int) []Entry {
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(h.entries) - 1; i >= len(h.entries)-n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}
