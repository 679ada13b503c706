package kernel

import "sync"

// Stats describes the kernel heap. Bytes is an estimate of the memory held by
// live objects.
type Stats struct {
	Live   int    `json:"live"`
	Bytes  int64  `json:"bytes"`
	Peak   int64  `json:"peak"`
	Allocs uint64 `json:"allocs"`
	Frees  uint64 `json:"frees"`
}

// heap accounts for every object the kernel hands out until it is deleted.
type heap struct {
	mu     sync.Mutex
	nextID uint64
	live   map[uint64]int64
	stats  Stats
}

func newHeap() *heap {
	return &heap{live: make(map[uint64]int64)}
}

func (h *heap) alloc(size int64) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.live[id] = size
	h.stats.Live++
	h.stats.Allocs++
	h.stats.Bytes += size
	h.stats.Peak = max(h.stats.Peak, h.stats.Bytes)
	return id
}

// free releases id. Freeing an unknown or already freed id is a no-op and
// reports false.
func (h *heap) free(id uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	size, ok := h.live[id]
	if !ok {
		return false
	}
	delete(h.live, id)
	h.stats.Live--
	h.stats.Frees++
	h.stats.Bytes -= size
	return true
}

func (h *heap) snapshot() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}
