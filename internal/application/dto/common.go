package dto

// MaxPageLimit tope de filas por página en cualquier listado.
const MaxPageLimit = 100

// PageRequest paginación ya acotada: 1 ≤ Limit ≤ MaxPageLimit y Offset ≥ 0.
type PageRequest struct {
	Limit  int
	Offset int
}

// NewPageRequest acota limit y offset recibidos por query. limit ≤ 0 toma defaultLimit.
func NewPageRequest(limit, offset, defaultLimit int) PageRequest {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return PageRequest{Limit: limit, Offset: offset}
}

// PageResponse página efectivamente aplicada en la respuesta.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable para clientes (p. ej. INSUFFICIENT_STOCK).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
