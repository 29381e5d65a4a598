package http

import (
	"github.com/jhoicas/control-stock/internal/application/dto"
	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain/entity"
)

func toStockDTO(s *entity.Stock) dto.StockDTO {
	return dto.StockDTO{
		ID:          s.ID,
		ProductID:   s.Item.ProductID,
		InsumoID:    s.Item.InsumoID,
		LocationID:  s.LocationID,
		Quantity:    s.Quantity,
		Version:     s.Version,
		LastUpdated: s.LastUpdated,
	}
}

func toMovementDTO(m *entity.StockMovement) dto.StockMovementDTO {
	return dto.StockMovementDTO{
		ID:                m.ID,
		StockID:           m.StockID,
		ProductID:         m.Item.ProductID,
		InsumoID:          m.Item.InsumoID,
		LocationID:        m.LocationID,
		Direction:         m.Direction,
		Kind:              m.Kind,
		Quantity:          m.Quantity,
		Reason:            m.Reason,
		ActorID:           m.ActorID,
		SaleID:            m.Correlation.SaleID,
		ShipmentID:        m.Correlation.ShipmentID,
		ProductionBatchID: m.Correlation.ProductionBatchID,
		BulkLoadID:        m.Correlation.BulkLoadID,
		CreatedAt:         m.CreatedAt,
	}
}

func toMovementDTOs(list []*entity.StockMovement) []dto.StockMovementDTO {
	out := make([]dto.StockMovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementDTO(m))
	}
	return out
}

func toInconsistencyDTO(i inventory.Inconsistency) dto.InconsistencyDTO {
	return dto.InconsistencyDTO{
		Kind:       i.Kind,
		StockID:    i.StockID,
		ProductID:  i.Item.ProductID,
		InsumoID:   i.Item.InsumoID,
		LocationID: i.LocationID,
		Current:    i.Current,
		Computed:   i.Computed,
		Delta:      i.Delta,
	}
}

func toInconsistencyDTOs(list []inventory.Inconsistency) []dto.InconsistencyDTO {
	out := make([]dto.InconsistencyDTO, 0, len(list))
	for _, i := range list {
		out = append(out, toInconsistencyDTO(i))
	}
	return out
}

func toRepairSummaryDTO(s *inventory.RepairSummary) dto.RepairSummaryDTO {
	out := dto.RepairSummaryDTO{
		Total:    s.Total,
		Repaired: s.Repaired,
		Failed:   s.Failed,
		Skipped:  s.Skipped,
		Details:  make([]dto.RepairDetailDTO, 0, len(s.Details)),
	}
	for _, d := range s.Details {
		out.Details = append(out.Details, dto.RepairDetailDTO{
			InconsistencyDTO: toInconsistencyDTO(d.Inconsistency),
			Status:           d.Status,
			Error:            d.Error,
		})
	}
	return out
}

func toConfigDTO(c *entity.StockConfig) dto.StockConfigDTO {
	return dto.StockConfigDTO{
		ID:           c.ID,
		ProductID:    c.ProductID,
		BranchID:     c.BranchID,
		StockMax:     c.StockMax,
		StockMin:     c.StockMin,
		ReorderPoint: c.ReorderPoint,
		CreatedBy:    c.CreatedBy,
		Active:       c.Active,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toAlertDTO(a *entity.StockAlert) dto.StockAlertDTO {
	return dto.StockAlertDTO{
		ID:        a.ID,
		ProductID: a.ProductID,
		BranchID:  a.BranchID,
		Kind:      a.Kind,
		Message:   a.Message,
		Quantity:  a.Quantity,
		Threshold: a.Threshold,
		Active:    a.Active,
		ViewedBy:  a.ViewedBy,
		ViewedAt:  a.ViewedAt,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toBulkLoadDTO(b *entity.BulkLoad) dto.BulkLoadDTO {
	return dto.BulkLoadDTO{
		ID:             b.ID,
		Name:           b.Name,
		Description:    b.Description,
		BranchID:       b.BranchID,
		Mode:           b.Mode,
		Status:         b.Status,
		TotalItems:     b.TotalItems,
		ProcessedItems: b.ProcessedItems,
		ErrorItems:     b.ErrorItems,
		CreatedBy:      b.CreatedBy,
		StartedAt:      b.StartedAt,
		FinishedAt:     b.FinishedAt,
	}
}

func toBulkLoadItemDTOs(items []*entity.BulkLoadItem) []dto.BulkLoadItemDTO {
	out := make([]dto.BulkLoadItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.BulkLoadItemDTO{
			LineNumber:        it.LineNumber,
			ProductID:         it.ProductID,
			Barcode:           it.Barcode,
			Name:              it.Name,
			Quantity:          it.Quantity,
			ResolvedProductID: it.ResolvedProductID,
			QuantityBefore:    it.QuantityBefore,
			QuantityAfter:     it.QuantityAfter,
			Status:            it.Status,
			Error:             it.Error,
		})
	}
	return out
}

func toBulkLoadResponse(batch *entity.BulkLoad, items []*entity.BulkLoadItem) dto.BulkLoadResponse {
	summary := inventory.Summarize(batch)
	return dto.BulkLoadResponse{
		Batch: toBulkLoadDTO(batch),
		Summary: dto.BulkLoadSummaryDTO{
			Total:          summary.Total,
			Processed:      summary.Processed,
			Errors:         summary.Errors,
			SuccessRatePct: summary.SuccessRatePct,
		},
		Lines: toBulkLoadItemDTOs(items),
	}
}
