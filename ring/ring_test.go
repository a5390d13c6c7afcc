// SPDX-License-Identifier: EPL-2.0

package ring

import (
	"sync"
	"testing"
	"time"
)

func TestNew_RoundsToPowerOfTwo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{"exact power", 1024, 1024},
		{"rounds up", 1000, 1024},
		{"one", 1, 1},
		{"three", 3, 4},
		{"zero clamps", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := New(tt.capacity)
			if b.Cap() != tt.want {
				t.Errorf("New(%d).Cap() = %d, want %d", tt.capacity, b.Cap(), tt.want)
			}
		})
	}
}

func TestPushPop_Basic(t *testing.T) {
	t.Parallel()

	b := New(16)

	src := []float32{1, 2, 3, 4, 5}
	if err := b.Push(src); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if b.Len() != 5 {
		t.Errorf("Len() = %d, want 5", b.Len())
	}

	dst := make([]float32, 5)
	if n := b.Pop(dst); n != 5 {
		t.Fatalf("Pop() = %d, want 5", n)
	}
	for i, v := range src {
		if dst[i] != v {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], v)
		}
	}
}

func TestPop_EmptyNeverBlocks(t *testing.T) {
	t.Parallel()

	b := New(8)

	dst := make([]float32, 4)
	if n := b.Pop(dst); n != 0 {
		t.Errorf("Pop() on empty ring = %d, want 0", n)
	}
}

func TestPop_PartialFill(t *testing.T) {
	t.Parallel()

	b := New(8)
	if err := b.Push([]float32{1, 2, 3}); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	dst := make([]float32, 8)
	if n := b.Pop(dst); n != 3 {
		t.Errorf("Pop() = %d, want 3", n)
	}
}

func TestPushPop_Wraparound(t *testing.T) {
	t.Parallel()

	b := New(8)
	dst := make([]float32, 8)

	// Advance the indices so subsequent copies straddle the edge.
	next := float32(0)
	for range 10 {
		chunk := make([]float32, 5)
		for i := range chunk {
			chunk[i] = next
			next++
		}
		if err := b.Push(chunk); err != nil {
			t.Fatalf("Push() error = %v", err)
		}

		n := b.Pop(dst[:5])
		if n != 5 {
			t.Fatalf("Pop() = %d, want 5", n)
		}
		for i := range 5 {
			want := next - 5 + float32(i)
			if dst[i] != want {
				t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want)
			}
		}
	}
}

func TestPush_BlocksUntilSpace(t *testing.T) {
	t.Parallel()

	b := New(4)
	if err := b.Push([]float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	pushed := make(chan error, 1)
	go func() {
		pushed <- b.Push([]float32{5, 6})
	}()

	select {
	case err := <-pushed:
		t.Fatalf("Push() on full ring returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	dst := make([]float32, 2)
	b.Pop(dst)

	select {
	case err := <-pushed:
		if err != nil {
			t.Fatalf("Push() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Push() still blocked after space was freed")
	}
}

func TestClose_UnblocksPush(t *testing.T) {
	t.Parallel()

	b := New(4)
	if err := b.Push([]float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	pushed := make(chan error, 1)
	go func() {
		pushed <- b.Push([]float32{5})
	}()

	time.Sleep(10 * time.Millisecond)
	b.Close()

	select {
	case err := <-pushed:
		if err != ErrClosed {
			t.Errorf("Push() after Close error = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Push() still blocked after Close")
	}

	if err := b.Push([]float32{6}); err != ErrClosed {
		t.Errorf("Push() on closed ring error = %v, want ErrClosed", err)
	}
}

func TestClose_PopStillDrains(t *testing.T) {
	t.Parallel()

	b := New(8)
	if err := b.Push([]float32{1, 2, 3}); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	b.Close()

	dst := make([]float32, 8)
	if n := b.Pop(dst); n != 3 {
		t.Errorf("Pop() after Close = %d, want 3", n)
	}
}

func TestConcurrent_TransferIntegrity(t *testing.T) {
	t.Parallel()

	const total = 100000
	b := New(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		chunk := make([]float32, 17)
		sent := 0
		for sent < total {
			k := min(len(chunk), total-sent)
			for i := range k {
				chunk[i] = float32(sent + i)
			}
			if err := b.Push(chunk[:k]); err != nil {
				t.Errorf("Push() error = %v", err)
				return
			}
			sent += k
		}
	}()

	dst := make([]float32, 23)
	got := 0
	for got < total {
		n := b.Pop(dst)
		for i := range n {
			if dst[i] != float32(got+i) {
				t.Fatalf("sample %d = %v, want %v", got+i, dst[i], float32(got+i))
			}
		}
		got += n
		if n == 0 {
			time.Sleep(time.Microsecond)
		}
	}

	wg.Wait()
}

func BenchmarkPop(b *testing.B) {
	buf := New(4096)
	src := make([]float32, 512)
	dst := make([]float32, 512)

	b.ReportAllocs()
	for b.Loop() {
		_ = buf.Push(src)
		buf.Pop(dst)
	}
}
