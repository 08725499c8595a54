package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sadopc/storeflow/internal/activity"
)

func sampleOrders() []activity.Order {
	return []activity.Order{
		{
			ID:           "o1",
			CustomerName: "alice",
			OrderTime:    "2025-06-15T10:00:00Z",
			Products: []activity.ProductLine{
				{ProductID: "p1", Price: 10, Quantity: 2},
				{ProductID: "p2", Price: 5, Quantity: 1},
			},
		},
		{
			ID:           "o2",
			CustomerName: "bob",
			Products:     nil,
		},
	}
}

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := ToCSV(sampleOrders(), path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "alice" || rows[1][4] != "25.00" {
		t.Fatalf("unexpected first order row: %v", rows[1])
	}
	if rows[2][3] != "0" {
		t.Fatalf("expected 0 items for empty order, got %v", rows[2])
	}
}

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	if err := ToJSON(sampleOrders(), path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var out jsonExport
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || len(out.Orders) != 2 {
		t.Fatalf("unexpected export: %+v", out)
	}
	if out.Orders[0].Customer != "alice" || out.Orders[0].Total != 25 {
		t.Fatalf("unexpected first order: %+v", out.Orders[0])
	}
	if out.ExportedAt == "" {
		t.Fatal("exported_at should be set")
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
