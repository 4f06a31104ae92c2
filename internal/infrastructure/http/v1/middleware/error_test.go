package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/types"
)

func newErrorRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/stock-check", handler)
	return r
}

func doRequest(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock-check", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_InsufficientStockListsShortfallsAtTopLevel(t *testing.T) {
	r := newErrorRouter(func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock([]apperror.StockShortfall{
			{
				MaterialName: "Denim",
				RequiredQty:  types.MustQuantity("250"),
				CurrentStock: types.MustQuantity("100"),
			},
		}))
		c.Abort()
	})

	w := doRequest(r)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Code                  string `json:"code"`
		Message               string `json:"message"`
		InsufficientMaterials []struct {
			MaterialName string  `json:"materialName"`
			RequiredQty  float64 `json:"requiredQty"`
			CurrentStock float64 `json:"currentStock"`
		} `json:"insufficientMaterials"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, apperror.CodeInsufficientStock, body.Code)
	assert.NotEmpty(t, body.Message)
	require.Len(t, body.InsufficientMaterials, 1)
	assert.Equal(t, "Denim", body.InsufficientMaterials[0].MaterialName)
	assert.Equal(t, 250.0, body.InsufficientMaterials[0].RequiredQty)
	assert.Equal(t, 100.0, body.InsufficientMaterials[0].CurrentStock)
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	r := newErrorRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
		c.Abort()
	})

	w := doRequest(r)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeInternal, body.Code)
	assert.NotContains(t, body.Message, "connection refused")
}
