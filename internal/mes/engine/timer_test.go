package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

var t0 = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestOrder() *entity.Order {
	return &entity.Order{
		ID:           entity.NewOrderID("MO-2026-001", "NB-100"),
		OrderNo:      "MO-2026-001",
		ProductCode:  "NB-100",
		RequestedQty: 10,
		StepCount:    2,
		StepProgress: entity.StepMap{},
		StepTime:     entity.StepMap{},
		Status:       entity.OrderStatusNotStarted,
	}
}

func TestTimerStartPause(t *testing.T) {
	o := newTestOrder()

	patch, err := Start(o, t0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if o.Status != entity.OrderStatusRunning {
		t.Errorf("status after start = %s, want running", o.Status)
	}
	if o.TimerStartedAt == nil || !o.TimerStartedAt.Equal(t0) {
		t.Errorf("timer_started_at = %v, want %v", o.TimerStartedAt, t0)
	}
	if patch["status"] != entity.OrderStatusRunning {
		t.Errorf("patch status = %v", patch["status"])
	}

	// After running for 90s, pause must settle exactly 90s
	if _, err := Pause(o, t0.Add(90*time.Second)); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if o.ElapsedSec != 90 {
		t.Errorf("elapsed_sec = %d, want 90", o.ElapsedSec)
	}
	if o.TimerStartedAt != nil {
		t.Error("timer_started_at not cleared by pause")
	}
	if o.Status != entity.OrderStatusPaused {
		t.Errorf("status after pause = %s, want paused", o.Status)
	}
}

func TestTimerResumeAccumulates(t *testing.T) {
	o := newTestOrder()

	Start(o, t0)
	Pause(o, t0.Add(60*time.Second))
	if _, err := Resume(o, t0.Add(5*time.Minute)); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	// Paused span must not count: elapsed unchanged on resume
	if o.ElapsedSec != 60 {
		t.Errorf("elapsed_sec after resume = %d, want 60", o.ElapsedSec)
	}
	Pause(o, t0.Add(5*time.Minute+30*time.Second))
	if o.ElapsedSec != 90 {
		t.Errorf("elapsed_sec after second pause = %d, want 90", o.ElapsedSec)
	}
}

func TestTimerIllegalTransitions(t *testing.T) {
	o := newTestOrder()

	if _, err := Pause(o, t0); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Pause on not_started: err = %v, want ErrIllegalTransition", err)
	}
	if _, err := Resume(o, t0); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Resume on not_started: err = %v, want ErrIllegalTransition", err)
	}

	Start(o, t0)
	if _, err := Start(o, t0.Add(time.Second)); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("double Start: err = %v, want ErrIllegalTransition", err)
	}
	if _, err := Resume(o, t0.Add(time.Second)); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Resume while running: err = %v, want ErrIllegalTransition", err)
	}
}

func TestCurrentElapsedReadOnly(t *testing.T) {
	o := newTestOrder()
	Start(o, t0)

	got := TimerOf(o).CurrentElapsed(t0.Add(42 * time.Second))
	if got != 42 {
		t.Errorf("CurrentElapsed = %d, want 42", got)
	}
	// Read must not mutate the order
	if o.ElapsedSec != 0 {
		t.Errorf("elapsed_sec mutated by read: %d", o.ElapsedSec)
	}
	if o.TimerStartedAt == nil {
		t.Error("timer_started_at cleared by read")
	}
}

func TestCurrentElapsedClockSkew(t *testing.T) {
	o := newTestOrder()
	Start(o, t0)

	// Clock moved backwards: running span clamps to zero, never negative
	got := TimerOf(o).CurrentElapsed(t0.Add(-10 * time.Second))
	if got != 0 {
		t.Errorf("CurrentElapsed with skewed clock = %d, want 0", got)
	}
}

func TestRoundSeconds(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int64
	}{
		{1400 * time.Millisecond, 1},
		{1500 * time.Millisecond, 2},
		{500 * time.Millisecond, 1},
		{499 * time.Millisecond, 0},
		{-3 * time.Second, 0},
	}
	for _, c := range cases {
		if got := roundSeconds(c.d); got != c.want {
			t.Errorf("roundSeconds(%v) = %d, want %d", c.d, got, c.want)
		}
	}
}
