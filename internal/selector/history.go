package selector

// RotationHistory is a fixed-capacity ring of recently recommended
// archetype names for one symbol. It is owned by the caller's per-symbol
// state and must never be shared across symbols.
type RotationHistory struct {
	names []string
	head  int
	size  int
}

// NewRotationHistory creates a history holding at most capacity names.
func NewRotationHistory(capacity int) *RotationHistory {
	if capacity <= 0 {
		capacity = 1
	}
	return &RotationHistory{names: make([]string, capacity)}
}

// Push records a recommended archetype, evicting the oldest entry once
// the ring is full.
func (h *RotationHistory) Push(name string) {
	h.names[h.head] = name
	h.head = (h.head + 1) % len(h.names)
	if h.size < len(h.names) {
		h.size++
	}
}

// Count returns how many recorded entries match name.
func (h *RotationHistory) Count(name string) int {
	n := 0
	for i := 0; i < h.size; i++ {
		if h.names[i] == name {
			n++
		}
	}
	return n
}

// Len returns the number of recorded entries.
func (h *RotationHistory) Len() int {
	return h.size
}

// Recent returns the recorded names, oldest first.
func (h *RotationHistory) Recent() []string {
	out := make([]string, 0, h.size)
	start := 0
	if h.size == len(h.names) {
		start = h.head
	}
	for i := 0; i < h.size; i++ {
		out = append(out, h.names[(start+i)%len(h.names)])
	}
	return out
}
