package service

import (
	"context"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/testutil"
	"go.uber.org/zap"
)

func TestBuildReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewReportService(repos.Order, nil, "", zap.NewNop())

	// Order with one real batch
	o1 := testutil.SeedOrder(t, db, "MO-001", "NB-100", 10, 2)
	db.Model(o1).Updates(map[string]interface{}{
		"fully_done_qty": 6,
		"step_progress":  entity.StepMap{1: 8, 2: 6},
	})
	db.Create(&entity.Batch{
		ID: "b1", OrderID: o1.ID, Qty: 6, Status: entity.BatchStatusDrying,
		CreatedAt: time.Now(), StatusChangedAt: time.Now(),
	})

	// Legacy order: completion without batch rows yields a synthetic row
	o2 := testutil.SeedOrder(t, db, "MO-002", "NB-200", 5, 1)
	db.Model(o2).Update("fully_done_qty", 5)

	f, err := svc.BuildReport(context.Background())
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	defer f.Close()

	sheet := "生产报表"
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	// header + 2 order rows + 1 real batch row + 1 synthetic batch row
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	if rows[0][0] != "订单号" {
		t.Errorf("header = %q", rows[0][0])
	}

	// Orders are listed newest first
	if rows[1][0] != "MO-002" {
		t.Errorf("first order row = %q, want MO-002", rows[1][0])
	}
	// Synthetic batch labeled instead of a uuid
	if rows[2][9] != "整单（合成）" {
		t.Errorf("synthetic batch label = %q", rows[2][9])
	}
	if rows[4][9] != "b1" {
		t.Errorf("batch row id = %q, want b1", rows[4][9])
	}
	if rows[4][11] != "drying" {
		t.Errorf("batch row status = %q, want drying", rows[4][11])
	}
}

func TestFormatSteps(t *testing.T) {
	if got := formatSteps(entity.StepMap{2: 4, 1: 6}, "件"); got != "1:6件 2:4件" {
		t.Errorf("formatSteps = %q", got)
	}
	if got := formatSteps(entity.StepMap{}, "秒"); got != "" {
		t.Errorf("empty map = %q", got)
	}
}

func TestArchiveWithoutStorage(t *testing.T) {
	svc := NewReportService(nil, nil, "", zap.NewNop())
	if _, err := svc.Archive(context.Background(), nil); err == nil {
		t.Error("expected error when object storage is disabled")
	}
}

func TestDashboardDailyBadDate(t *testing.T) {
	svc := NewDashboardService(nil)
	if _, err := svc.Daily("not-a-date"); err == nil {
		t.Error("expected error for malformed date")
	}
}
