// SPDX-License-Identifier: EPL-2.0

// Package ring provides the single-producer single-consumer sample
// queue between the render goroutine and the output callback.
//
// The consumer side (Pop) is wait-free: no locks, no allocation, no
// blocking, which is what a hardware audio callback requires. The
// producer side (Push) may block when the ring is full; it sleeps on a
// channel that the consumer tickles after draining data, so the
// producer never busy-spins.
package ring

import (
	"errors"
	"math/bits"
	"sync/atomic"
)

var ErrClosed = errors.New("ring closed")

// Buffer is a fixed-capacity float32 ring. Exactly one goroutine may
// call Push and exactly one may call Pop.
type Buffer struct {
	buf  []float32
	mask uint64

	// Monotonic totals; masked for indexing.
	w atomic.Uint64 // written, owned by producer
	r atomic.Uint64 // read, owned by consumer

	space chan struct{} // consumer -> producer wakeup
	done  chan struct{}
}

// New creates a Buffer holding at least capacity samples, rounded up
// to a power of two.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	n := 1 << bits.Len64(uint64(capacity-1))

	return &Buffer{
		buf:   make([]float32, n),
		mask:  uint64(n - 1),
		space: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Cap is the total sample capacity.
func (b *Buffer) Cap() int { return len(b.buf) }

// Len is the number of samples currently queued.
func (b *Buffer) Len() int {
	return int(b.w.Load() - b.r.Load())
}

// Close wakes a blocked producer and makes further Push calls fail.
// Pop keeps draining whatever is already queued.
func (b *Buffer) Close() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}

// Push copies all of src into the ring, blocking while full. Returns
// ErrClosed if the ring is closed before src is fully written.
func (b *Buffer) Push(src []float32) error {
	for len(src) > 0 {
		select {
		case <-b.done:
			return ErrClosed
		default:
		}

		w := b.w.Load()
		r := b.r.Load()
		free := uint64(len(b.buf)) - (w - r)
		if free == 0 {
			select {
			case <-b.space:
			case <-b.done:
				return ErrClosed
			}
			continue
		}

		n := uint64(len(src))
		if n > free {
			n = free
		}
		b.copyIn(w, src[:n])
		b.w.Store(w + n)
		src = src[n:]
	}
	return nil
}

// Pop copies up to len(dst) queued samples into dst and returns the
// count. Never blocks and never allocates; safe to call from the
// audio callback.
func (b *Buffer) Pop(dst []float32) int {
	r := b.r.Load()
	w := b.w.Load()
	avail := w - r
	if avail == 0 {
		return 0
	}

	n := uint64(len(dst))
	if n > avail {
		n = avail
	}
	b.copyOut(r, dst[:n])
	b.r.Store(r + n)

	// Wake the producer; non-blocking so the callback never stalls.
	select {
	case b.space <- struct{}{}:
	default:
	}

	return int(n)
}

func (b *Buffer) copyIn(w uint64, src []float32) {
	i := w & b.mask
	n := copy(b.buf[i:], src)
	if n < len(src) {
		copy(b.buf, src[n:])
	}
}

func (b *Buffer) copyOut(r uint64, dst []float32) {
	i := r & b.mask
	n := copy(dst, b.buf[i:])
	if n < len(dst) {
		copy(dst[n:], b.buf)
	}
}
