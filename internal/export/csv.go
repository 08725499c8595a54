package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/storeflow/internal/activity"
)

func ToCSV(orders []activity.Order, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Customer", "Order Time", "Items", "Total"}); err != nil {
		return err
	}

	for _, o := range orders {
		row := []string{
			o.ID,
			o.CustomerName,
			o.OrderTime,
			fmt.Sprintf("%d", len(o.Products)),
			fmt.Sprintf("%.2f", o.Total()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
