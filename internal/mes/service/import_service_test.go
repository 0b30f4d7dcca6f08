package service

import (
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Order No", "orderno"},
		{"ORDER_NO", "orderno"},
		{"  order-no ", "orderno"},
		{"Número", "numero"},     // diacritics folded
		{"Quantité", "quantite"},
		{"Step.Count", "stepcount"},
		{"订单号", "订单号"},
	}
	for _, c := range cases {
		if got := NormalizeHeader(c.in); got != c.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseRecordsHeaderAliases(t *testing.T) {
	rows := [][]string{
		{"Order Number", "SKU", "Client", "Quantity", "Steps"},
		{"MO-001", "NB-100", "Acme", "50", "3"},
		{"MO-002", "NB-200", "", "0", "0"},
	}
	records, skipped := ParseRecords(rows)
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	r := records[0]
	if r.OrderNo != "MO-001" || r.ProductCode != "NB-100" || r.Customer != "Acme" {
		t.Errorf("record = %+v", r)
	}
	if r.RequestedQty != 50 || r.StepCount != 3 {
		t.Errorf("qty = %d steps = %d", r.RequestedQty, r.StepCount)
	}
}

func TestParseRecordsChineseHeaders(t *testing.T) {
	rows := [][]string{
		{"订单号", "产品编码", "客户名称", "订单数量", "工序数"},
		{"MO-101", "NB-300", "深圳某厂", "20", "2"},
	}
	records, _ := ParseRecords(rows)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].OrderNo != "MO-101" || records[0].Customer != "深圳某厂" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestParseRecordsSkipsIncompleteRows(t *testing.T) {
	rows := [][]string{
		{"order_no", "product_code", "qty"},
		{"MO-001", "NB-100", "10"},
		{"", "NB-200", "5"},    // missing order no: skipped
		{"MO-003", "", "5"},    // missing product code: skipped
		{"", "", ""},           // fully empty: ignored, not counted
		{"MO-004", "NB-400", "bad"}, // unparseable qty defaults to 0, row kept
	}
	records, skipped := ParseRecords(rows)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if records[1].RequestedQty != 0 {
		t.Errorf("unparseable qty = %d, want 0", records[1].RequestedQty)
	}
}

func TestParseRecordsEmptyInput(t *testing.T) {
	records, skipped := ParseRecords(nil)
	if records != nil || skipped != 0 {
		t.Errorf("ParseRecords(nil) = %v, %d", records, skipped)
	}
}

func TestParseRecordsIgnoresUnknownColumns(t *testing.T) {
	rows := [][]string{
		{"order_no", "warehouse", "product_code"},
		{"MO-001", "W-7", "NB-100"},
	}
	records, _ := ParseRecords(rows)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].OrderNo != "MO-001" || records[0].ProductCode != "NB-100" {
		t.Errorf("record = %+v", records[0])
	}
}
