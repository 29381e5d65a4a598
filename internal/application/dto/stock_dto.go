package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/stock/adjustments.
// Exactamente uno de product_id o insumo_id.
type AdjustStockRequest struct {
	ProductID         string          `json:"product_id,omitempty"`
	InsumoID          string          `json:"insumo_id,omitempty"`
	LocationID        string          `json:"location_id"`
	Delta             decimal.Decimal `json:"delta"` // positivo = entrada, negativo = salida
	Reason            string          `json:"reason"`
	SaleID            string          `json:"sale_id,omitempty"`
	ShipmentID        string          `json:"shipment_id,omitempty"`
	ProductionBatchID string          `json:"production_batch_id,omitempty"`
	AllowNegative     bool            `json:"allow_negative,omitempty"`
}

// StockDTO saldo de un ítem en una ubicación.
type StockDTO struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	InsumoID    string          `json:"insumo_id,omitempty"`
	LocationID  string          `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Version     int64           `json:"version"`
	LastUpdated time.Time       `json:"last_updated"`
}

// StockMovementDTO registro del libro de movimientos.
type StockMovementDTO struct {
	ID                string          `json:"id"`
	StockID           string          `json:"stock_id"`
	ProductID         string          `json:"product_id,omitempty"`
	InsumoID          string          `json:"insumo_id,omitempty"`
	LocationID        string          `json:"location_id"`
	Direction         string          `json:"direction"`
	Kind              string          `json:"kind"`
	Quantity          decimal.Decimal `json:"quantity"`
	Reason            string          `json:"reason"`
	ActorID           string          `json:"actor_id"`
	SaleID            string          `json:"sale_id,omitempty"`
	ShipmentID        string          `json:"shipment_id,omitempty"`
	ProductionBatchID string          `json:"production_batch_id,omitempty"`
	BulkLoadID        string          `json:"bulk_load_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// AdjustStockResponse saldo resultante y movimiento agregado.
type AdjustStockResponse struct {
	Stock    StockDTO         `json:"stock"`
	Movement StockMovementDTO `json:"movement"`
}

// MovementListResponse respuesta de GET /api/stock/movements.
type MovementListResponse struct {
	Items []StockMovementDTO `json:"items"`
	Page  PageResponse       `json:"page"`
}

// InconsistencyDTO hallazgo del auditor.
type InconsistencyDTO struct {
	Kind       string          `json:"kind"`
	StockID    string          `json:"stock_id"`
	ProductID  string          `json:"product_id,omitempty"`
	InsumoID   string          `json:"insumo_id,omitempty"`
	LocationID string          `json:"location_id"`
	Current    decimal.Decimal `json:"current"`
	Computed   decimal.Decimal `json:"computed"`
	Delta      decimal.Decimal `json:"delta"`
}

// RepairDetailDTO resultado de reparar un hallazgo.
type RepairDetailDTO struct {
	InconsistencyDTO
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RepairSummaryDTO respuesta de POST /api/stock/consistency/repair.
type RepairSummaryDTO struct {
	Total    int               `json:"total"`
	Repaired int               `json:"repaired"`
	Failed   int               `json:"failed"`
	Skipped  int               `json:"skipped"`
	Details  []RepairDetailDTO `json:"details"`
}

// UpsertStockConfigRequest body para PUT /api/stock/configs.
type UpsertStockConfigRequest struct {
	ProductID    string          `json:"product_id"`
	BranchID     string          `json:"branch_id"`
	StockMax     decimal.Decimal `json:"stock_maximo"`
	StockMin     decimal.Decimal `json:"stock_minimo"`
	ReorderPoint decimal.Decimal `json:"punto_reposicion"`
	Active       *bool           `json:"activo,omitempty"`
}

// StockConfigDTO umbrales de un par (producto, sucursal).
type StockConfigDTO struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	BranchID     string          `json:"branch_id"`
	StockMax     decimal.Decimal `json:"stock_maximo"`
	StockMin     decimal.Decimal `json:"stock_minimo"`
	ReorderPoint decimal.Decimal `json:"punto_reposicion"`
	CreatedBy    string          `json:"created_by"`
	Active       bool            `json:"activo"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StockAlertDTO alerta de stock.
type StockAlertDTO struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	BranchID  string          `json:"branch_id"`
	Kind      string          `json:"tipo"`
	Message   string          `json:"mensaje"`
	Quantity  decimal.Decimal `json:"cantidad"`
	Threshold decimal.Decimal `json:"umbral"`
	Active    bool            `json:"activa"`
	ViewedBy  string          `json:"visto_por,omitempty"`
	ViewedAt  *time.Time      `json:"visto_en,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BulkLoadLineRequest línea de una carga masiva.
type BulkLoadLineRequest struct {
	ProductID string          `json:"product_id,omitempty"`
	Barcode   string          `json:"barcode,omitempty"`
	Name      string          `json:"name,omitempty"`
	Quantity  decimal.Decimal `json:"cantidad"`
}

// ProcessBulkLoadRequest body para POST /api/stock/bulk-loads.
type ProcessBulkLoadRequest struct {
	Name        string                `json:"nombre"`
	Description string                `json:"descripcion,omitempty"`
	BranchID    string                `json:"branch_id"`
	Mode        string                `json:"mode"` // increment | set | decrement
	Lines       []BulkLoadLineRequest `json:"lines"`
}

// BulkLoadDTO cabecera de un lote.
type BulkLoadDTO struct {
	ID             string     `json:"id"`
	Name           string     `json:"nombre"`
	Description    string     `json:"descripcion,omitempty"`
	BranchID       string     `json:"branch_id"`
	Mode           string     `json:"mode"`
	Status         string     `json:"estado"`
	TotalItems     int        `json:"total_items"`
	ProcessedItems int        `json:"items_procesados"`
	ErrorItems     int        `json:"items_errores"`
	CreatedBy      string     `json:"created_by"`
	StartedAt      time.Time  `json:"fecha_inicio"`
	FinishedAt     *time.Time `json:"fecha_fin,omitempty"`
}

// BulkLoadItemDTO resultado de una línea.
type BulkLoadItemDTO struct {
	LineNumber        int             `json:"linea"`
	ProductID         string          `json:"product_id,omitempty"`
	Barcode           string          `json:"barcode,omitempty"`
	Name              string          `json:"name,omitempty"`
	Quantity          decimal.Decimal `json:"cantidad"`
	ResolvedProductID string          `json:"resolved_product_id,omitempty"`
	QuantityBefore    decimal.Decimal `json:"cantidad_anterior"`
	QuantityAfter     decimal.Decimal `json:"cantidad_final"`
	Status            string          `json:"status"`
	Error             string          `json:"error,omitempty"`
}

// BulkLoadSummaryDTO contadores del lote.
type BulkLoadSummaryDTO struct {
	Total          int   `json:"total"`
	Processed      int   `json:"processed"`
	Errors         int   `json:"errors"`
	SuccessRatePct int64 `json:"success_rate_pct"`
}

// BulkLoadResponse lote, resumen y líneas.
type BulkLoadResponse struct {
	Batch   BulkLoadDTO        `json:"batch"`
	Summary BulkLoadSummaryDTO `json:"summary"`
	Lines   []BulkLoadItemDTO  `json:"lines"`
}
