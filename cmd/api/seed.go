package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/garment-erp/production-ledger/internal/application"
	"github.com/garment-erp/production-ledger/internal/domain"
	"github.com/garment-erp/production-ledger/pkg/logging"
)

// seedFile is the JSON shape of an optional startup seed: opening WIP lots,
// raw stock credits, and packed finished goods.
type seedFile struct {
	Lots []struct {
		LotNumber    string `json:"lotNumber"`
		ParentLot    string `json:"parentLot"`
		StyleID      string `json:"styleId"`
		Color        string `json:"color"`
		Size         string `json:"size"`
		UOM          string `json:"uom"`
		TotalQty     int    `json:"totalQty"`
		OpeningStage string `json:"openingStage"`
	} `json:"lots"`
	RawStock []struct {
		ItemID    string `json:"itemId"`
		LotNumber string `json:"lotNumber"`
		Qty       int    `json:"qty"`
		UOM       string `json:"uom"`
	} `json:"rawStock"`
	Packings []struct {
		PackingNo string `json:"packingNo"`
		Items     []struct {
			StyleID   string `json:"styleId"`
			Color     string `json:"color"`
			Warehouse string `json:"warehouse"`
			Size      string `json:"size"`
			Cartons   int    `json:"cartons"`
			Pieces    int    `json:"pieces"`
		} `json:"items"`
	} `json:"packings"`
}

const seedActor = "seed"

func loadSeed(
	ctx context.Context,
	path string,
	transitions *application.TransitionService,
	stock *application.StockService,
	fg *application.FGService,
	logger *logging.Logger,
) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for _, lot := range seed.Lots {
		if _, err := transitions.CreateLot(ctx, application.CreateLotCommand{
			LotNumber:    lot.LotNumber,
			ParentLot:    lot.ParentLot,
			StyleID:      lot.StyleID,
			Color:        lot.Color,
			Size:         lot.Size,
			UOM:          lot.UOM,
			TotalQty:     lot.TotalQty,
			OpeningStage: domain.ProcessStage(lot.OpeningStage),
			Actor:        seedActor,
		}); err != nil {
			return fmt.Errorf("failed to seed lot %s: %w", lot.LotNumber, err)
		}
	}

	for _, credit := range seed.RawStock {
		if _, err := stock.AddToRawStock(ctx, application.AddRawStockCommand{
			ItemID:    credit.ItemID,
			LotNumber: credit.LotNumber,
			Qty:       credit.Qty,
			UOM:       credit.UOM,
			Reason:    "Opening stock",
			Actor:     seedActor,
		}); err != nil {
			return fmt.Errorf("failed to seed raw stock %s/%s: %w", credit.ItemID, credit.LotNumber, err)
		}
	}

	for _, packing := range seed.Packings {
		items := make([]application.PackingItemCommand, 0, len(packing.Items))
		for _, item := range packing.Items {
			items = append(items, application.PackingItemCommand{
				StyleID:   item.StyleID,
				Color:     item.Color,
				Warehouse: item.Warehouse,
				Size:      item.Size,
				Cartons:   item.Cartons,
				Pieces:    item.Pieces,
			})
		}
		if err := fg.RecordPackingClose(ctx, application.RecordPackingCloseCommand{
			PackingNo: packing.PackingNo,
			Items:     items,
			Actor:     seedActor,
		}); err != nil {
			return fmt.Errorf("failed to seed packing %s: %w", packing.PackingNo, err)
		}
	}

	logger.Info("Seed data loaded",
		"file", path,
		"lots", len(seed.Lots),
		"rawStock", len(seed.RawStock),
		"packings", len(seed.Packings),
	)
	return nil
}
