package engine

import (
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func TestVirtualBatchDerivation(t *testing.T) {
	o := newTestOrder()
	o.FullyDoneQty = 8
	o.PackedQty = 8
	o.Boxes = 3

	vb := VirtualBatch(o)
	if vb == nil {
		t.Fatal("expected a virtual batch for legacy order")
	}
	if vb.ID != VirtualBatchID || !vb.Virtual {
		t.Errorf("id = %s, virtual = %v", vb.ID, vb.Virtual)
	}
	if vb.Qty != 8 {
		t.Errorf("qty = %d, want fully_done 8", vb.Qty)
	}
	if vb.Status != entity.BatchStatusPartial {
		t.Errorf("status = %s, want partial", vb.Status)
	}
	if vb.PackedQty != 8 || vb.Boxes != 3 {
		t.Errorf("packing meta not mirrored: packed=%d boxes=%d", vb.PackedQty, vb.Boxes)
	}
}

func TestVirtualBatchFollowsOrderPhase(t *testing.T) {
	o := newTestOrder()
	o.FullyDoneQty = 5
	o.Status = entity.OrderStatusDrying

	vb := VirtualBatch(o)
	if vb == nil || vb.Status != entity.BatchStatusDrying {
		t.Fatalf("virtual batch status should follow order phase, got %+v", vb)
	}
}

func TestVirtualBatchAbsent(t *testing.T) {
	// Nothing produced yet: no synthetic batch
	o := newTestOrder()
	if vb := VirtualBatch(o); vb != nil {
		t.Errorf("expected nil, got %+v", vb)
	}

	// Real batches exist: synthetic view steps aside
	o.FullyDoneQty = 5
	o.Batches = []entity.Batch{{ID: "b1", OrderID: o.ID, Qty: 5}}
	if vb := VirtualBatch(o); vb != nil {
		t.Errorf("expected nil when real batches exist, got %+v", vb)
	}
}

func TestBatchesOf(t *testing.T) {
	o := newTestOrder()
	if got := BatchesOf(o); got != nil {
		t.Errorf("empty order: BatchesOf = %v, want nil", got)
	}

	o.FullyDoneQty = 3
	got := BatchesOf(o)
	if len(got) != 1 || !got[0].Virtual {
		t.Fatalf("legacy order: BatchesOf = %+v, want one virtual batch", got)
	}

	o.Batches = []entity.Batch{{ID: "b1"}, {ID: "b2"}}
	got = BatchesOf(o)
	if len(got) != 2 || got[0].ID != "b1" {
		t.Fatalf("real batches: BatchesOf = %+v", got)
	}
}

func TestNewBatch(t *testing.T) {
	b := NewBatch("order-1", 4, t0)
	if b.ID == "" || b.ID == VirtualBatchID {
		t.Errorf("batch id = %q", b.ID)
	}
	if b.OrderID != "order-1" || b.Qty != 4 {
		t.Errorf("batch = %+v", b)
	}
	if b.Status != entity.BatchStatusPartial {
		t.Errorf("status = %s, want partial", b.Status)
	}
	if !b.StatusChangedAt.Equal(t0) {
		t.Errorf("status_changed_at = %v", b.StatusChangedAt)
	}
}
