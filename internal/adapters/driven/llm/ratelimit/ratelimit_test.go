package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLLM struct {
	calls  int
	err    error
	closed bool
}

func (c *countingLLM) Generate(context.Context, string, string) (string, error) {
	c.calls++
	return "ok", c.err
}
func (c *countingLLM) ModelName() string          { return "counting" }
func (c *countingLLM) Ping(context.Context) error { return nil }
func (c *countingLLM) Close() error               { c.closed = true; return nil }

func TestWrap_ZeroRateReturnsInner(t *testing.T) {
	inner := &countingLLM{}
	assert.Same(t, inner, Wrap(inner, 0))
	assert.Nil(t, Wrap(nil, 5))
}

func TestGenerate_Delegates(t *testing.T) {
	inner := &countingLLM{}
	svc := New(inner, 1000, time.Second)

	out, err := svc.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "counting", svc.ModelName())
	require.NoError(t, svc.Close())
	assert.True(t, inner.closed)
}

func TestGenerate_WaitRespectsContext(t *testing.T) {
	inner := &countingLLM{}
	svc := New(inner, 0.001, time.Second)

	// First call consumes the only token.
	_, err := svc.Generate(context.Background(), "", "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Generate(ctx, "", "")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestGenerate_BacksOffAfter429(t *testing.T) {
	inner := &countingLLM{err: errors.New("openai error (status 429): slow down")}
	svc := New(inner, 1000, time.Hour)

	_, err := svc.Generate(context.Background(), "", "")
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Generate(ctx, "", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, inner.calls)
}
