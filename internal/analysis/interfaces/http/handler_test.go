package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionsdesk/internal/analysis/application"
	"github.com/wyfcoding/optionsdesk/internal/analysis/infrastructure/persistence/mysql"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"github.com/wyfcoding/optionsdesk/pkg/middleware"
	"github.com/wyfcoding/optionsdesk/pkg/testutil"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := testutil.NewDB(t, mysql.Models()...)
	repo := mysql.NewHistoryRepository(gdb)
	h := NewAnalysisHandler(
		application.NewAnalysisCommandService(db.NewTransactor(gdb), repo, nil, nil, nil),
		application.NewAnalysisQueryService(repo, 10),
	)

	r := gin.New()
	api := r.Group("/api/v1", middleware.IdentityMiddleware(nil, "X-User-ID"))
	h.RegisterRoutes(api)
	return r
}

func do(r *gin.Engine, method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBlackScholesEndpoint(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/analysis/black-scholes", "7", map[string]any{
		"spotPrice":    20000,
		"strikePrice":  21000,
		"timeToExpiry": 0.25,
		"riskFreeRate": 0.03,
		"volatility":   0.2,
		"optionType":   "call",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, 0, env.Code)

	var result map[string]float64
	require.NoError(t, json.Unmarshal(env.Data, &result))
	for _, key := range []string{"optionPrice", "delta", "gamma", "vega", "theta", "rho"} {
		assert.Contains(t, result, key)
	}
	assert.Greater(t, result["optionPrice"], 0.0)

	w = do(r, http.MethodGet, "/api/v1/analysis/history?limit=5", "7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 1)
}

func TestBlackScholesEndpoint_Errors(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/analysis/black-scholes", "", map[string]any{"optionType": "call"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/v1/analysis/black-scholes", "7", map[string]any{
		"spotPrice":    20000,
		"strikePrice":  21000,
		"timeToExpiry": 0,
		"volatility":   0.2,
		"optionType":   "call",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/analysis/history?limit=500", "7", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/analysis/history?limit=abc", "7", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayoffEndpoint(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/analysis/payoff", "7", map[string]any{
		"strategyType":   "call",
		"strikePrice":    20000,
		"premium":        500,
		"quantity":       1,
		"spotPriceRange": map[string]float64{"min": 18000, "max": 22000, "step": 500},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var result struct {
		PayoffData         []map[string]float64 `json:"payoffData"`
		MaxProfit          float64              `json:"maxProfit"`
		MaxLoss            float64              `json:"maxLoss"`
		MaxProfitUnbounded bool                 `json:"maxProfitUnbounded"`
		BreakEvenPoints    []float64            `json:"breakEvenPoints"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Len(t, result.PayoffData, 9)
	assert.Equal(t, []float64{20500}, result.BreakEvenPoints)
	assert.True(t, result.MaxProfitUnbounded)

	w = do(r, http.MethodPost, "/api/v1/analysis/payoff", "7", map[string]any{
		"strategyType":   "call",
		"strikePrice":    20000,
		"quantity":       1,
		"spotPriceRange": map[string]float64{"min": 22000, "max": 18000, "step": 500},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
