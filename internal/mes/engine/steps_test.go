package engine

import (
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func TestFullyDoneMinAcrossSteps(t *testing.T) {
	l := &StepLedger{StepCount: 3, Progress: entity.StepMap{}, Time: entity.StepMap{}}

	// Nothing recorded on step 3 yet: min is 0
	l.RecordStep(1, 8, 0)
	l.RecordStep(2, 5, 0)
	if got := l.FullyDone(0); got != 0 {
		t.Errorf("FullyDone with unrecorded step = %d, want 0", got)
	}

	l.RecordStep(3, 4, 0)
	if got := l.FullyDone(0); got != 4 {
		t.Errorf("FullyDone = %d, want 4 (min of 8,5,4)", got)
	}
}

func TestFullyDoneMonotonic(t *testing.T) {
	l := &StepLedger{StepCount: 2, Progress: entity.StepMap{1: 6, 2: 6}, Time: entity.StepMap{}}

	// Derived value may not regress below a previously persisted one
	if got := l.FullyDone(9); got != 9 {
		t.Errorf("FullyDone(previous=9) = %d, want 9", got)
	}
	if got := l.FullyDone(3); got != 6 {
		t.Errorf("FullyDone(previous=3) = %d, want 6", got)
	}
}

func TestFullyDoneLegacyOrder(t *testing.T) {
	// step_count=0 orders never derive completion, admin-only
	l := &StepLedger{StepCount: 0, Progress: entity.StepMap{1: 100, 2: 100}, Time: entity.StepMap{}}
	if got := l.FullyDone(0); got != 0 {
		t.Errorf("FullyDone with step_count=0 = %d, want 0", got)
	}
}

func TestValidStepBounds(t *testing.T) {
	declared := &StepLedger{StepCount: 3}
	legacy := &StepLedger{StepCount: 0}

	cases := []struct {
		ledger *StepLedger
		step   int
		want   bool
	}{
		{declared, 0, false},
		{declared, 1, true},
		{declared, 3, true},
		{declared, 4, false},
		{legacy, 1, true},
		{legacy, LegacyMaxStep, true},
		{legacy, LegacyMaxStep + 1, false},
		{legacy, -1, false},
	}
	for _, c := range cases {
		if got := c.ledger.ValidStep(c.step); got != c.want {
			t.Errorf("ValidStep(%d) with step_count=%d = %v, want %v",
				c.step, c.ledger.StepCount, got, c.want)
		}
	}
}

func TestRecordStepValidation(t *testing.T) {
	l := &StepLedger{StepCount: 2, Progress: entity.StepMap{}, Time: entity.StepMap{}}

	if err := l.RecordStep(5, 1, 0); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("out-of-range step: err = %v, want ErrInvalidStep", err)
	}
	if err := l.RecordStep(1, 0, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero pieces: err = %v, want ErrInvalidQuantity", err)
	}
	if err := l.RecordStep(1, -5, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("negative pieces: err = %v, want ErrInvalidQuantity", err)
	}
	if len(l.Progress) != 0 || len(l.Time) != 0 {
		t.Error("rejected record mutated the ledger")
	}
}

func TestRecordStepAccumulates(t *testing.T) {
	l := &StepLedger{StepCount: 2, Progress: entity.StepMap{}, Time: entity.StepMap{}}

	l.RecordStep(1, 3, 60)
	l.RecordStep(1, 2, 30)
	if got := l.Progress.Get(1); got != 5 {
		t.Errorf("step 1 progress = %d, want 5", got)
	}
	if got := l.Time.Get(1); got != 90 {
		t.Errorf("step 1 time = %d, want 90", got)
	}

	// Zero duration still counts pieces, just no time entry
	l.RecordStep(2, 4, 0)
	if got := l.Progress.Get(2); got != 4 {
		t.Errorf("step 2 progress = %d, want 4", got)
	}
	if got := l.Time.Get(2); got != 0 {
		t.Errorf("step 2 time = %d, want 0", got)
	}
}

func TestLedgerOfClones(t *testing.T) {
	o := newTestOrder()
	o.StepProgress = entity.StepMap{1: 5}

	l := LedgerOf(o)
	l.RecordStep(1, 3, 10)

	if o.StepProgress.Get(1) != 5 {
		t.Error("ledger mutation leaked into the order document")
	}
}

func TestIsOrderComplete(t *testing.T) {
	if IsOrderComplete(10, 10) != true {
		t.Error("fully_done == requested should complete")
	}
	if IsOrderComplete(12, 10) != true {
		t.Error("fully_done > requested should complete")
	}
	if IsOrderComplete(9, 10) != false {
		t.Error("fully_done < requested should not complete")
	}
	// requested=0 orders never auto-complete
	if IsOrderComplete(5, 0) != false {
		t.Error("requested=0 must never auto-complete")
	}
}
