// SPDX-License-Identifier: EPL-2.0

package clip

import "sync/atomic"

// Store holds the currently loaded Clip and swaps it atomically on
// reload. The control thread is the single writer; the render thread
// calls Current once per cycle and holds that pointer for the whole
// cycle, so a swapped-out clip stays valid for any in-flight read.
type Store struct {
	cur atomic.Pointer[Clip]
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the loaded clip, or nil when nothing is loaded.
func (s *Store) Current() *Clip {
	return s.cur.Load()
}

// Swap installs c as the current clip and returns the previous one.
func (s *Store) Swap(c *Clip) *Clip {
	return s.cur.Swap(c)
}

// Clear unloads the current clip.
func (s *Store) Clear() {
	s.cur.Store(nil)
}
