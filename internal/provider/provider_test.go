package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"pattas/pkg/model"
)

type fakeSource struct {
	name   string
	points []model.PricePoint
	err    error
	calls  int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) GetHistory(ctx context.Context, ticker string, days int) ([]model.PricePoint, error) {
	f.calls++
	return f.points, f.err
}

func makePoints(n int) []model.PricePoint {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, n)
	for i := range points {
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: 100 + float64(i)}
	}
	return points
}

func TestHistoryChainFirstSourceWins(t *testing.T) {
	primary := &fakeSource{name: "primary", points: makePoints(40)}
	fallback := &fakeSource{name: "fallback", points: makePoints(40)}
	chain := NewHistoryChain(30, primary, fallback)

	points, err := chain.Fetch(context.Background(), "RELIANCE.BO", 182)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(points) != 40 {
		t.Errorf("Expected 40 points, got %d", len(points))
	}
	if fallback.calls != 0 {
		t.Error("Fallback should not be called when primary is sufficient")
	}
}

func TestHistoryChainFallsBackOnError(t *testing.T) {
	primary := &fakeSource{name: "primary", err: errors.New("connection refused")}
	fallback := &fakeSource{name: "fallback", points: makePoints(35)}
	chain := NewHistoryChain(30, primary, fallback)

	points, err := chain.Fetch(context.Background(), "RELIANCE.BO", 182)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(points) != 35 {
		t.Errorf("Expected 35 points, got %d", len(points))
	}
}

func TestHistoryChainFallsBackOnShortSeries(t *testing.T) {
	primary := &fakeSource{name: "primary", points: makePoints(12)}
	fallback := &fakeSource{name: "fallback", points: makePoints(31)}
	chain := NewHistoryChain(30, primary, fallback)

	points, err := chain.Fetch(context.Background(), "TCS.BO", 182)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(points) != 31 {
		t.Errorf("Expected fallback's 31 points, got %d", len(points))
	}
}

func TestHistoryChainBoundary(t *testing.T) {
	// Exactly minPoints-1 is rejected, exactly minPoints is accepted
	short := &fakeSource{name: "short", points: makePoints(29)}
	chain := NewHistoryChain(30, short)
	if _, err := chain.Fetch(context.Background(), "X.BO", 182); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("29 points should be insufficient, got err=%v", err)
	}

	exact := &fakeSource{name: "exact", points: makePoints(30)}
	chain = NewHistoryChain(30, exact)
	points, err := chain.Fetch(context.Background(), "X.BO", 182)
	if err != nil {
		t.Fatalf("30 points should be accepted: %v", err)
	}
	if len(points) != 30 {
		t.Errorf("Expected 30 points, got %d", len(points))
	}
}

func TestHistoryChainAllFail(t *testing.T) {
	a := &fakeSource{name: "a", err: errors.New("down")}
	b := &fakeSource{name: "b", points: makePoints(3)}
	chain := NewHistoryChain(30, a, b)

	_, err := chain.Fetch(context.Background(), "X.BO", 182)
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("Expected ErrInsufficientHistory, got %v", err)
	}
}

func TestHistoryChainSortsPoints(t *testing.T) {
	points := makePoints(32)
	// Shuffle a couple of entries out of order
	points[0], points[10] = points[10], points[0]
	src := &fakeSource{name: "unordered", points: points}
	chain := NewHistoryChain(30, src)

	got, err := chain.Fetch(context.Background(), "X.BO", 182)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.Before(got[i-1].Date) {
			t.Fatalf("Points not sorted at index %d", i)
		}
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := errors.New("status 502")
	pe := &ProviderError{Provider: "nse", Err: inner, Retryable: true}

	if !errors.Is(pe, inner) {
		t.Error("ProviderError should unwrap to the inner error")
	}
	if pe.Error() != "nse: status 502" {
		t.Errorf("Unexpected message: %s", pe.Error())
	}
}
