package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/intelliplan-api/pkg/middleware/requestid"
)

func TestAuditLogsSuccessfulRequestsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(requestid.Middleware())
	router.POST("/catalog/reload", Audit(zap.New(core), "catalog.reload"), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/catalog/upload", Audit(zap.New(core), "catalog.upload"), func(c *gin.Context) { c.Status(http.StatusUnsupportedMediaType) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/catalog/reload", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/catalog/upload", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "catalog.reload", entries[0].Message)
	assert.Equal(t, "audit", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/catalog/reload", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
