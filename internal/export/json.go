package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/storeflow/internal/activity"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Orders     []jsonOrder `json:"orders"`
}

type jsonOrder struct {
	ID        string  `json:"id"`
	Customer  string  `json:"customer"`
	OrderTime string  `json:"order_time,omitempty"`
	Items     int     `json:"items"`
	Total     float64 `json:"total"`
}

func ToJSON(orders []activity.Order, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(orders),
	}

	for _, o := range orders {
		export.Orders = append(export.Orders, jsonOrder{
			ID:        o.ID,
			Customer:  o.CustomerName,
			OrderTime: o.OrderTime,
			Items:     len(o.Products),
			Total:     o.Total(),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
