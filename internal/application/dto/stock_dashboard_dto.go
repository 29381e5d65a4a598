package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockDashboardDTO respuesta de GET /api/stock/dashboard.
type StockDashboardDTO struct {
	BranchID        string             `json:"branch_id,omitempty"` // vacío = todas las sucursales
	Stats           DashboardStatsDTO  `json:"stats"`
	BranchSummaries []BranchSummaryDTO `json:"branch_summaries"`
	FullAnalysis    []StockAnalysisDTO `json:"full_analysis"` // orden alfabético por producto
	TopDeficit      []StockAnalysisDTO `json:"top_deficit"`
	TopExcess       []StockAnalysisDTO `json:"top_excess"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// DashboardStatsDTO conteos globales por estado y por origen de umbrales.
type DashboardStatsDTO struct {
	Total      int `json:"total"`
	Critical   int `json:"critico"`
	Low        int `json:"bajo"`
	Normal     int `json:"normal"`
	Excess     int `json:"exceso"`
	Configured int `json:"configurados"`
	Inferred   int `json:"inferidos"`
}

// BranchSummaryDTO los mismos conteos para una sucursal.
type BranchSummaryDTO struct {
	BranchID   string `json:"branch_id"`
	BranchName string `json:"branch_name"`
	BranchType string `json:"branch_type"`
	DashboardStatsDTO
}

// StockAnalysisDTO fila clasificada de un par (producto, sucursal).
type StockAnalysisDTO struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Barcode           string          `json:"barcode,omitempty"`
	BranchID          string          `json:"branch_id"`
	BranchName        string          `json:"branch_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	StockMax          decimal.Decimal `json:"stock_maximo"`
	StockMin          decimal.Decimal `json:"stock_minimo"`
	ReorderPoint      decimal.Decimal `json:"punto_reposicion"`
	Diff              decimal.Decimal `json:"diff"` // stock_maximo − cantidad
	UtilizationPct    decimal.Decimal `json:"utilization_pct"`
	State             string          `json:"state"`
	NeedsReorder      bool            `json:"needs_reorder"`
	CanLoadMore       bool            `json:"can_load_more"`
	SuggestedQty      decimal.Decimal `json:"suggested_qty"`
	HasExcess         bool            `json:"has_excess"`
	ExcessAmount      decimal.Decimal `json:"excess_amount"`
	RecommendedAction string          `json:"recommended_action"`
	HasExplicitConfig bool            `json:"has_explicit_config"`
}
