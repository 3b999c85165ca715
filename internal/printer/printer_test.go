package printer

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_PlainOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	p := New(&out, &errOut)

	p.Successf("moved %s", "a.md")
	p.Warnf("held")
	p.Errorf("boom: %d", 1)
	p.Success("Converged", "2 iterations")

	assert.Equal(t, "✓ moved a.md\n! held\n✓ Converged\n  2 iterations\n", out.String())
	assert.Equal(t, "✗ boom: 1\n", errOut.String())
}

func TestPrinter_Items(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, &out)

	p.CheckItem("intake", "exists")
	p.WarnItem("done", "")
	p.FailItem("payment", "not found")

	assert.Equal(t, "  ✓ intake exists\n  … done\n  ✗ payment not found\n", out.String())
}

func TestCtx_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, Ctx(context.Background()))

	p := New(&bytes.Buffer{}, &bytes.Buffer{})
	ctx := NewContext(context.Background(), p)
	assert.Same(t, p, Ctx(ctx))
}

func TestPrinter_Hold(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, &out)

	held, release := p.Hold()
	held.Successf("approved %s", "invoice")
	held.Errorf("dispatch failed")
	assert.Empty(t, out.String(), "nothing reaches the terminal before release")

	require.NoError(t, release())
	assert.Equal(t, "✓ approved invoice\n✗ dispatch failed\n", out.String())

	require.NoError(t, release())
	assert.Equal(t, "✓ approved invoice\n✗ dispatch failed\n", out.String(), "second release writes nothing")
}

func TestPrinter_HoldConcurrent(t *testing.T) {
	var out bytes.Buffer
	held, release := New(&out, &out).Hold()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			held.Printf("x")
		}()
	}
	wg.Wait()

	require.NoError(t, release())
	assert.Equal(t, 100, out.Len())
}
