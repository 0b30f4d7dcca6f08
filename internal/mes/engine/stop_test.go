package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// Full production run of a two-step order for 10 pieces:
// stops report 6+4 pieces per step, completion derives from the min
// across steps and each positive delta yields exactly one batch.
func TestStopFullProductionRun(t *testing.T) {
	o := newTestOrder() // step_count=2, requested=10
	now := t0

	type stop struct {
		step       int
		pieces     int64
		wantFully  int64
		wantBatch  int64 // 0 = no batch expected
		wantStatus string
	}
	run := []stop{
		{1, 6, 0, 0, entity.OrderStatusNotStarted}, // step 2 untouched, min=0
		{2, 6, 6, 6, entity.OrderStatusNotStarted},
		{1, 4, 6, 0, entity.OrderStatusNotStarted},
		{2, 4, 10, 4, entity.OrderStatusDone},
	}

	var batchTotal int64
	for i, s := range run {
		now = now.Add(10 * time.Minute)
		Start(o, now)
		now = now.Add(5 * time.Minute)

		res, err := Stop(o, StopInput{Step: s.step, Pieces: s.pieces, Operator: "王芳"}, now)
		if err != nil {
			t.Fatalf("stop %d: %v", i, err)
		}
		if o.FullyDoneQty != s.wantFully {
			t.Errorf("stop %d: fully_done_qty = %d, want %d", i, o.FullyDoneQty, s.wantFully)
		}
		if s.wantBatch == 0 && res.NewBatch != nil {
			t.Errorf("stop %d: unexpected batch of %d", i, res.NewBatch.Qty)
		}
		if s.wantBatch > 0 {
			if res.NewBatch == nil {
				t.Fatalf("stop %d: expected batch of %d, got none", i, s.wantBatch)
			}
			if res.NewBatch.Qty != s.wantBatch {
				t.Errorf("stop %d: batch qty = %d, want %d", i, res.NewBatch.Qty, s.wantBatch)
			}
			if res.NewBatch.Status != entity.BatchStatusPartial {
				t.Errorf("stop %d: batch status = %s, want partial", i, res.NewBatch.Status)
			}
			batchTotal += res.NewBatch.Qty
		}
		if o.Status != s.wantStatus {
			t.Errorf("stop %d: status = %s, want %s", i, o.Status, s.wantStatus)
		}
		// Timer always settles to zero after a stop
		if o.ElapsedSec != 0 || o.TimerStartedAt != nil {
			t.Errorf("stop %d: timer not cleared", i)
		}
		if res.DurationSec != 300 {
			t.Errorf("stop %d: duration = %d, want 300", i, res.DurationSec)
		}
	}

	// Batch quantities always sum to the derived completion
	if batchTotal != o.FullyDoneQty {
		t.Errorf("sum of batch qty = %d, fully_done_qty = %d", batchTotal, o.FullyDoneQty)
	}
	if res := o.LastStop; res == nil || res.Operator != "王芳" {
		t.Error("last_stop audit not recorded")
	}
}

func TestStopValidationLeavesOrderUntouched(t *testing.T) {
	cases := []struct {
		name string
		in   StopInput
		want error
	}{
		{"zero pieces", StopInput{Step: 1, Pieces: 0, Operator: "ok"}, ErrInvalidQuantity},
		{"negative pieces", StopInput{Step: 1, Pieces: -1, Operator: "ok"}, ErrInvalidQuantity},
		{"step out of range", StopInput{Step: 3, Pieces: 1, Operator: "ok"}, ErrInvalidStep},
		{"zero step", StopInput{Step: 0, Pieces: 1, Operator: "ok"}, ErrInvalidStep},
		{"missing operator", StopInput{Step: 1, Pieces: 1, Operator: "  "}, ErrMissingOperator},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o := newTestOrder()
			Start(o, t0)
			before := *o

			_, err := Stop(o, c.in, t0.Add(time.Minute))
			if !errors.Is(err, c.want) {
				t.Fatalf("err = %v, want %v", err, c.want)
			}
			// Rejected stop must not change anything, timer keeps running
			if o.Status != before.Status || o.FullyDoneQty != before.FullyDoneQty ||
				o.ElapsedSec != before.ElapsedSec || o.TimerStartedAt == nil {
				t.Error("rejected stop mutated the order")
			}
			if len(o.StepProgress) != 0 {
				t.Error("rejected stop recorded pieces")
			}
		})
	}
}

func TestStopLegacyOrderNeverCompletes(t *testing.T) {
	o := newTestOrder()
	o.StepCount = 0 // legacy: steps 1..LegacyMaxStep accepted, no derivation

	Start(o, t0)
	res, err := Stop(o, StopInput{Step: 7, Pieces: 50, Operator: "李强"}, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if o.FullyDoneQty != 0 {
		t.Errorf("legacy fully_done_qty = %d, want 0", o.FullyDoneQty)
	}
	if res.NewBatch != nil {
		t.Error("legacy order produced a batch")
	}
	if res.Completed {
		t.Error("legacy order auto-completed")
	}
	if o.StepProgress.Get(7) != 50 {
		t.Errorf("step 7 progress = %d, want 50", o.StepProgress.Get(7))
	}
}

func TestStopWithoutRunningTimer(t *testing.T) {
	// Stopping from not_started is allowed: duration is whatever was banked
	o := newTestOrder()
	o.ElapsedSec = 120

	res, err := Stop(o, StopInput{Step: 1, Pieces: 2, Operator: "张伟"}, t0)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if res.DurationSec != 120 {
		t.Errorf("duration = %d, want banked 120", res.DurationSec)
	}
	if o.StepTime.Get(1) != 120 {
		t.Errorf("step time = %d, want 120", o.StepTime.Get(1))
	}
}

func TestStopOvershootRequested(t *testing.T) {
	// fully_done may exceed requested_qty, no cap is enforced
	o := newTestOrder()
	o.StepCount = 1

	Start(o, t0)
	res, err := Stop(o, StopInput{Step: 1, Pieces: 15, Operator: "张伟"}, t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if o.FullyDoneQty != 15 {
		t.Errorf("fully_done_qty = %d, want 15", o.FullyDoneQty)
	}
	if !res.Completed || o.Status != entity.OrderStatusDone {
		t.Error("overshoot should still complete the order")
	}
}
