package provider

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMirrorSet_Rotation(t *testing.T) {
	m := NewMirrorSet([]string{"a", "b", "c"})

	assert.Equal(t, "a", m.Current())
	m.Advance()
	assert.Equal(t, "b", m.Current())
	m.Advance()
	assert.Equal(t, "c", m.Current())
	m.Advance()
	assert.Equal(t, "a", m.Current(), "rotation wraps")
	assert.Equal(t, 3, m.Len())
}

func TestMirrorSet_SingleMirror(t *testing.T) {
	m := NewMirrorSet([]string{"only"})

	m.Advance()
	m.Advance()
	assert.Equal(t, "only", m.Current())
}

func TestMirrorSet_ConcurrentAdvance(t *testing.T) {
	m := NewMirrorSet([]string{"a", "b", "c"})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Advance()
			_ = m.Current()
		}()
	}
	wg.Wait()

	// 100 advances over 3 mirrors: 100 % 3 == 1.
	assert.Equal(t, "b", m.Current())
}
