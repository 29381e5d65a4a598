package http

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/control-stock/internal/application/dto"
	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/infrastructure/spreadsheet"
)

// BulkLoadHandler procesa y consulta cargas masivas (conteos y recepciones).
type BulkLoadHandler struct {
	uc  *inventory.BulkLoadUseCase
	log zerolog.Logger
}

func NewBulkLoadHandler(uc *inventory.BulkLoadUseCase, log zerolog.Logger) *BulkLoadHandler {
	return &BulkLoadHandler{uc: uc, log: log}
}

// Process godoc
// @Summary      Procesar carga masiva
// @Description  Cada línea se resuelve por product_id, barcode o nombre y se aplica según mode.
// @Tags         bulk-loads
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ProcessBulkLoadRequest  true  "nombre, branch_id, mode, lines"
// @Success      201   {object}  dto.BulkLoadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/bulk-loads [post]
func (h *BulkLoadHandler) Process(c *fiber.Ctx) error {
	var in dto.ProcessBulkLoadRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	lines := make([]inventory.BulkLoadLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.BulkLoadLine{ProductID: l.ProductID, Barcode: l.Barcode, Name: l.Name, Quantity: l.Quantity})
	}
	return h.process(c, inventory.ProcessBulkLoadInput{
		Name:        in.Name,
		Description: in.Description,
		BranchID:    in.BranchID,
		Mode:        in.Mode,
		Lines:       lines,
		ActorID:     GetUserID(c),
	})
}

// Upload godoc
// @Summary      Procesar carga masiva desde planilla
// @Description  Archivo XLSX o CSV con columnas producto_id, codigo_barras, nombre, cantidad.
// @Tags         bulk-loads
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file         formData  file    true   "Planilla .xlsx o .csv"
// @Param        nombre       formData  string  true   "Nombre del lote"
// @Param        descripcion  formData  string  false  "Descripción"
// @Param        branch_id    formData  string  true   "Sucursal"
// @Param        mode         formData  string  true   "increment | set | decrement"
// @Success      201  {object}  dto.BulkLoadResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/bulk-loads/upload [post]
func (h *BulkLoadHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "MISSING_FILE", "archivo requerido en el campo file")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "INVALID_FILE", "no se pudo leer el archivo")
	}
	defer f.Close()

	lines, err := spreadsheet.Read(f, filepath.Ext(fh.Filename))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return h.process(c, inventory.ProcessBulkLoadInput{
		Name:        c.FormValue("nombre"),
		Description: c.FormValue("descripcion"),
		BranchID:    c.FormValue("branch_id"),
		Mode:        c.FormValue("mode"),
		Lines:       lines,
		ActorID:     GetUserID(c),
	})
}

func (h *BulkLoadHandler) process(c *fiber.Ctx, in inventory.ProcessBulkLoadInput) error {
	res, err := h.uc.ProcessBatch(c.Context(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBulkLoadResponse(res.Batch, res.Lines))
}

// Get godoc
// @Summary      Consultar carga masiva
// @Tags         bulk-loads
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  dto.BulkLoadResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/bulk-loads/{id} [get]
func (h *BulkLoadHandler) Get(c *fiber.Ctx) error {
	batch, items, err := h.uc.GetBulkLoad(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toBulkLoadResponse(batch, items))
}

// List godoc
// @Summary      Listar cargas masivas
// @Tags         bulk-loads
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (todas si vacío)"
// @Param        limit      query  int     false  "Máximo de filas (20, tope 100)"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.BulkLoadDTO
// @Router       /api/stock/bulk-loads [get]
func (h *BulkLoadHandler) List(c *fiber.Ctx) error {
	page := dto.NewPageRequest(c.QueryInt("limit"), c.QueryInt("offset"), 20)
	list, err := h.uc.ListBulkLoads(c.Context(), c.Query("branch_id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.BulkLoadDTO, 0, len(list))
	for _, b := range list {
		out = append(out, toBulkLoadDTO(b))
	}
	return c.JSON(out)
}
