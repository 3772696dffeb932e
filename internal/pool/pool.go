// Package pool provides bucketed sync.Pool instances for the scratch buffers
// of a codec session, and a Scope that tracks every buffer a session takes so
// that closing the session hands them all back at once.
package pool

import "sync"

// Size classes for bucketed pools.
const (
	Size256B = 256
	Size1K   = 1024
	Size4K   = 4096
	Size16K  = 16384
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
)

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size256B:
		return 0
	case size <= Size1K:
		return 1
	case size <= Size4K:
		return 2
	case size <= Size16K:
		return 3
	case size <= Size64K:
		return 4
	case size <= Size256K:
		return 5
	default:
		return 6
	}
}

var sizes = [7]int{Size256B, Size1K, Size4K, Size16K, Size64K, Size256K, Size1M}

var pools [7]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice of at least the requested size from the pool.
// The returned slice has length == size and may have a larger capacity.
// Its contents are unspecified. The caller must call Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	bp := pools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// Put returns a byte slice to the pool. The slice must have been obtained
// from Get. Slices smaller than Size256B are not pooled.
func Put(b []byte) {
	c := cap(b)
	if c < Size256B {
		return
	}
	// A slice is filed under the largest class it can fully serve.
	idx := bucketIndex(c)
	if c < sizes[idx] {
		idx--
	}
	b = b[:c]
	pools[idx].Put(&b)
}

// Allocator hands out scratch buffers and takes them back.
type Allocator interface {
	Get(size int) []byte
	Put(b []byte)
}

// Scope is the allocator of one session. Every buffer obtained through it is
// recorded until it is Put back or the scope is released. A Scope is safe for
// concurrent use, although a session normally touches it from one goroutine.
type Scope struct {
	mu       sync.Mutex
	held     map[*byte][]byte
	released bool
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{held: make(map[*byte][]byte)}
}

// Get returns a buffer of length size drawn from the shared pools. After
// Release the buffer is plain heap memory and is no longer tracked.
func (s *Scope) Get(size int) []byte {
	b := Get(size)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return b
	}
	s.held[base(b)] = b
	return b
}

// Put hands a buffer back before the scope ends. Buffers the scope does not
// know about are ignored.
func (s *Scope) Put(b []byte) {
	k := base(b)
	if k == nil {
		return
	}
	s.mu.Lock()
	held, ok := s.held[k]
	if ok {
		delete(s.held, k)
	}
	s.mu.Unlock()
	if ok {
		Put(held)
	}
}

// Release returns every outstanding buffer to the pools. It is idempotent.
// Buffers handed out by the scope must not be used afterwards.
func (s *Scope) Release() {
	s.mu.Lock()
	held := s.held
	s.held = nil
	s.released = true
	s.mu.Unlock()
	for _, b := range held {
		Put(b)
	}
}

// Outstanding reports how many buffers are currently held.
func (s *Scope) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}

func base(b []byte) *byte {
	if cap(b) == 0 {
		return nil
	}
	return &b[:1][0]
}
