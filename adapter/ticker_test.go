package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTickerEmitsAndStops(t *testing.T) {
	ticker := NewTicker(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go ticker.Run(ctx)

	select {
	case tick := <-ticker.Ticks():
		require.NotZero(t, tick.NowUnix)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a tick")
	}

	ticker.Stop()
}
