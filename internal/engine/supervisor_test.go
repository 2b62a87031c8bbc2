package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt5-bands-bot/internal/gateway/gatewaytest"
	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/types"
)

// stubEngine counts supervisor calls without touching a venue.
type stubEngine struct {
	mu       sync.Mutex
	steps    int
	flattens int
}

var _ interfaces.Engine = (*stubEngine)(nil)

func (s *stubEngine) Step(ctx context.Context) (*types.StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps++
	return &types.StepResult{Symbol: "ETHUSD"}, nil
}

func (s *stubEngine) Flatten(ctx context.Context) (*types.OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flattens++
	return &types.OrderResult{Retcode: types.RetcodeDone}, nil
}

func (s *stubEngine) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps, s.flattens
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestSupervisorLifecycle(t *testing.T) {
	stub := &stubEngine{}
	sup := NewSupervisor(stub, 5*time.Millisecond)

	assert.Equal(t, StateIdle, sup.State())

	require.NoError(t, sup.Start(context.Background()))
	assert.Equal(t, StateRunning, sup.State())

	waitFor(t, func() bool { steps, _ := stub.counts(); return steps >= 2 })

	sup.RequestStop()
	sup.Wait()
	assert.Equal(t, StateStopped, sup.State())

	_, flattens := stub.counts()
	assert.Equal(t, 1, flattens, "exactly one drain action on stop")

	// no iterations after STOPPED
	steps, _ := stub.counts()
	time.Sleep(30 * time.Millisecond)
	stepsAfter, _ := stub.counts()
	assert.Equal(t, steps, stepsAfter)
}

func TestSupervisorRejectsDoubleStart(t *testing.T) {
	stub := &stubEngine{}
	sup := NewSupervisor(stub, 5*time.Millisecond)

	require.NoError(t, sup.Start(context.Background()))
	assert.ErrorIs(t, sup.Start(context.Background()), ErrAlreadyRunning)

	sup.RequestStop()
	sup.Wait()

	// a fully stopped worker may be started again
	require.NoError(t, sup.Start(context.Background()))
	sup.RequestStop()
	sup.Wait()

	_, flattens := stub.counts()
	assert.Equal(t, 2, flattens)
}

func TestSupervisorStopIsIdempotent(t *testing.T) {
	stub := &stubEngine{}
	sup := NewSupervisor(stub, 5*time.Millisecond)

	sup.RequestStop() // no worker yet: no-op

	require.NoError(t, sup.Start(context.Background()))
	sup.RequestStop()
	sup.RequestStop()
	sup.Wait()

	_, flattens := stub.counts()
	assert.Equal(t, 1, flattens)
}

func TestSupervisorContextCancelDrains(t *testing.T) {
	stub := &stubEngine{}
	sup := NewSupervisor(stub, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sup.Start(ctx))
	waitFor(t, func() bool { steps, _ := stub.counts(); return steps >= 1 })

	cancel()
	sup.Wait()

	assert.Equal(t, StateStopped, sup.State())
	_, flattens := stub.counts()
	assert.Equal(t, 1, flattens)
}

// Stop with a real engine over a fake venue: one open position must produce
// exactly one closing sell, and no further bar fetches once stopped.
func TestStopFlattensOpenPosition(t *testing.T) {
	gw := &gatewaytest.Fake{
		Info:          types.SymbolInfo{Symbol: "ETHUSD", Visible: true, Bid: 100, Ask: 100.1},
		Result:        types.OrderResult{Retcode: types.RetcodeDone, Deal: 2, Price: 100, Volume: 1},
		PositionsData: []types.Position{{Ticket: 1, Symbol: "ETHUSD", Side: types.SideBuy, Volume: 1, OpenPrice: 95}},
	}
	// flat closes inside the bands: the loop itself never trades
	gw.Bars = barsFromCloses(100, 100, 100, 100, 100, 100)

	eng := newTestEngine(t, gw)
	sup := NewSupervisor(eng, 5*time.Millisecond)

	require.NoError(t, sup.Start(context.Background()))
	waitFor(t, func() bool { return gw.BarCallCount() >= 2 })

	sup.RequestStop()
	sup.Wait()
	assert.Equal(t, StateStopped, sup.State())

	submitted := gw.SubmittedRequests()
	require.Len(t, submitted, 1, "exactly one closing order")
	assert.Equal(t, types.SideSell, submitted[0].Side)
	assert.Equal(t, "Close", submitted[0].Comment)

	fetches := gw.BarCallCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, fetches, gw.BarCallCount(), "no data fetches after STOPPED")
}
