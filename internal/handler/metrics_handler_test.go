package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intelliplan-api/internal/service"
)

type readyStub bool

func (r readyStub) Ready() bool { return bool(r) }

type pingStub struct{ err error }

func (p pingStub) Ping(ctx context.Context) error { return p.err }

func serveHandler(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
	handler(c)
	return w
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, readyStub(false), nil)
	w := serveHandler(h.Ready)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "CATALOG_UNAVAILABLE")

	h = NewMetricsHandler(nil, readyStub(true), nil)
	w = serveHandler(h.Ready)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","cache":"disabled"}`, w.Body.String())

	h = NewMetricsHandler(nil, readyStub(true), pingStub{err: errors.New("refused")})
	w = serveHandler(h.Ready)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","cache":"unreachable"}`, w.Body.String())

	h = NewMetricsHandler(nil, readyStub(true), pingStub{})
	assert.JSONEq(t, `{"status":"ready","cache":"ok"}`, serveHandler(h.Ready).Body.String())
}

func TestMetricsHandlerHealthAndSummary(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordCatalogReload("file", nil, 3)
	h := NewMetricsHandler(metrics, readyStub(true), nil)

	w := serveHandler(h.Health)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serveHandler(h.Summary)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"catalog_reloads":1`)

	w = serveHandler(h.Prometheus)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "intelliplan_catalog_courses 3")

	w = serveHandler(NewMetricsHandler(nil, nil, nil).Prometheus)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
