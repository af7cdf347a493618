package provider

import "sync/atomic"

// MirrorSet maintains a rotating pointer into an ordered list of base
// URLs for sources served by unreliable mirrors. On request failure the
// owning provider advances the pointer before returning its empty result,
// so the next independent request attempts a different mirror. There is
// no in-call retry.
//
// The pointer is shared by every request hitting the provider singleton,
// so rotation uses atomic operations.
type MirrorSet struct {
	urls []string
	idx  atomic.Uint32
}

// NewMirrorSet creates a mirror set over the given base URLs. The list
// must be non-empty and is not copied; callers must not mutate it.
func NewMirrorSet(urls []string) *MirrorSet {
	return &MirrorSet{urls: urls}
}

// Current returns the base URL the pointer currently selects.
func (m *MirrorSet) Current() string {
	return m.urls[int(m.idx.Load())%len(m.urls)]
}

// Advance moves the pointer to the next mirror, wrapping at the end.
func (m *MirrorSet) Advance() {
	m.idx.Add(1)
}

// Len returns the number of mirrors.
func (m *MirrorSet) Len() int {
	return len(m.urls)
}
