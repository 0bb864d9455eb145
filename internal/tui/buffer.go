package tui

// defaultBufferSize is the default line capacity of the scrollback.
const defaultBufferSize = 10000

// RingBuffer is fixed-size line storage with O(1) append. When full, the
// oldest lines are discarded.
type RingBuffer struct {
	data  []string
	size  int
	head  int
	tail  int
	count int
}

// NewRingBuffer creates a RingBuffer with the given capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = defaultBufferSize
	}
	return &RingBuffer{data: make([]string, capacity), size: capacity}
}

// Append adds a line, overwriting the oldest when full.
func (rb *RingBuffer) Append(line string) {
	rb.data[rb.head] = line
	rb.head = (rb.head + 1) % rb.size
	if rb.count < rb.size {
		rb.count++
	} else {
		rb.tail = (rb.tail + 1) % rb.size
	}
}

// Last returns up to n of the newest lines, oldest first.
func (rb *RingBuffer) Last(n int) []string {
	if n > rb.count {
		n = rb.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]string, n)
	start := (rb.tail + rb.count - n) % rb.size
	for i := 0; i < n; i++ {
		out[i] = rb.data[(start+i)%rb.size]
	}
	return out
}

// Count returns the number of stored lines.
func (rb *RingBuffer) Count() int {
	return rb.count
}
