package console

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out syncBuffer
	stop := NewPrinter(&out, Plain()).StartSpinner("Building project")
	time.Sleep(3 * spinnerInterval)
	stop()
	stop()

	got := out.String()
	require.Contains(t, got, "⠋ Building project")
	require.Contains(t, got, "⠙ Building project")
	require.True(t, strings.HasSuffix(got, "\r"+strings.Repeat(" ", len("Building project")+2)+"\r"))
}

func TestSpinnerImmediateStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out syncBuffer
	NewPrinter(&out, Plain()).StartSpinner("x")()
	assert.Equal(t, "\r⠋ x\r   \r", out.String())
}

func TestSpinnerClearsWideMessages(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out syncBuffer
	NewPrinter(&out, Plain()).StartSpinner("检查")()
	// two double-width runes occupy four cells
	assert.True(t, strings.HasSuffix(out.String(), "\r"+strings.Repeat(" ", 6)+"\r"))
}

func TestSpinnerUsesPalette(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out syncBuffer
	NewPrinter(&out, ANSI()).StartSpinner("x")()
	assert.True(t, strings.HasPrefix(out.String(), "\r\033[0;36m⠋\033[0m x"))
}
