package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-stock/internal/application/dto"
	"github.com/jhoicas/control-stock/internal/domain/entity"
	pkgjwt "github.com/jhoicas/control-stock/pkg/jwt"
)

const (
	testJWTSecret = "clave-de-pruebas-control-stock"
	testIssuer    = "control-stock-test"
	testExpMin    = 60
)

// ──────────────────────────────────────────────────────────────────────────────
// Token: presencia, formato, firma y expiración
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_TokenRechazado(t *testing.T) {
	api := newTestAPI(t)
	otherSecret, err := pkgjwt.Generate("otra-clave", userBodega, branchCentro, entity.RoleBodeguero, testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, userBodega, branchCentro, entity.RoleBodeguero, testIssuer, -1)
	require.NoError(t, err)
	valid, err := pkgjwt.Generate(testJWTSecret, userBodega, branchCentro, entity.RoleBodeguero, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema Basic", "Basic " + valid, "INVALID_TOKEN"},
		{"firmado con otra clave", "Bearer " + otherSecret, "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"basura", "Bearer no.es.jwt", "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := api.do(t, http.MethodGet, "/api/stock/alerts", tc.header, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

func TestAuth_EsquemaBearerSinDistinguirMayusculas(t *testing.T) {
	api := newTestAPI(t)
	tok, err := pkgjwt.Generate(testJWTSecret, userVentas, branchCentro, entity.RoleVendedor, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := api.do(t, http.MethodGet, "/api/stock/alerts", "bearer "+tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_ActorSaleDelToken(t *testing.T) {
	api := newTestAPI(t)
	body := adjustBody(prodVela, 4)
	body["actor_id"] = "u-suplantado"

	resp := api.do(t, http.MethodPost, "/api/stock/adjustments", api.token(t, userBodega, entity.RoleBodeguero), body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, userBodega, decode[dto.AdjustStockResponse](t, resp).Movement.ActorID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles de bodega sobre rutas de escritura
// ──────────────────────────────────────────────────────────────────────────────

// writerRoutes rutas reservadas a admin y bodeguero.
var writerRoutes = []struct {
	method, path string
}{
	{http.MethodGet, "/api/stock/consistency"},
	{http.MethodPost, "/api/stock/consistency/repair"},
	{http.MethodPut, "/api/stock/configs"},
	{http.MethodPost, "/api/stock/alerts/recompute"},
	{http.MethodPost, "/api/stock/bulk-loads"},
	{http.MethodPost, "/api/stock/bulk-loads/upload"},
}

func TestAuth_VendedorNoEscribe(t *testing.T) {
	api := newTestAPI(t)
	seller := api.token(t, userVentas, entity.RoleVendedor)

	for _, r := range writerRoutes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			resp := api.do(t, r.method, r.path, seller, nil)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

func TestAuth_TokenSinRolNoEscribe(t *testing.T) {
	api := newTestAPI(t)
	noRole := api.token(t, userBodega, "")

	for _, r := range writerRoutes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			resp := api.do(t, r.method, r.path, noRole, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "MISSING_ROLE", decode[dto.ErrorResponse](t, resp).Code)
		})
	}

	resp := api.do(t, http.MethodGet, "/api/stock/alerts", noRole, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "las lecturas solo exigen token válido")
}

func TestAuth_RolesDeBodegaReparan(t *testing.T) {
	api := newTestAPI(t)

	for _, role := range []string{entity.RoleAdmin, entity.RoleBodeguero} {
		t.Run(role, func(t *testing.T) {
			resp := api.do(t, http.MethodPost, "/api/stock/consistency/repair", api.token(t, userBodega, role), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, 0, decode[dto.RepairSummaryDTO](t, resp).Total)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// allow_negative depende del rol del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_AllowNegativeSegunRol(t *testing.T) {
	cases := []struct {
		role   string
		status int
	}{
		{entity.RoleVendedor, http.StatusForbidden},
		{entity.RoleBodeguero, http.StatusCreated},
		{entity.RoleAdmin, http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			api := newTestAPI(t)
			body := adjustBody(prodVela, -3)
			body["allow_negative"] = true

			resp := api.do(t, http.MethodPost, "/api/stock/adjustments", api.token(t, userVentas, tc.role), body)
			require.Equal(t, tc.status, resp.StatusCode)
			if tc.status != http.StatusCreated {
				assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, resp).Code)
				st, err := api.store.Stocks().Get(context.Background(), entity.ProductItem(prodVela), branchCentro)
				require.NoError(t, err)
				assert.Nil(t, st, "un rechazo no crea saldo")
				return
			}
			created := decode[dto.AdjustStockResponse](t, resp)
			assert.True(t, created.Stock.Quantity.Equal(decimal.NewFromInt(-3)))
		})
	}
}
