package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerRendersAndClears(t *testing.T) {
	var out lockedBuffer
	s := NewSpinner(&out, "Waiting for transfer")
	s.interval = time.Millisecond
	s.Start()
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Waiting for transfer")
	}, time.Second, time.Millisecond)

	s.SetMsg("Submitted, confirming")
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Submitted, confirming")
	}, time.Second, time.Millisecond)

	ran := s.Stop()
	assert.Greater(t, ran, time.Duration(0))
	assert.True(t, strings.HasSuffix(out.String(), "\r"), "line is cleared")
}
