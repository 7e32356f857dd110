package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func createTestLogger() (*zap.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	core := zapcore.NewCore(encoder, zapcore.AddSync(buf), zapcore.DebugLevel)
	logger := zap.New(core)
	return logger, buf
}

func TestLogger_LogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := createTestLogger()

	router := gin.New()
	router.Use(Logger(logger))

	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if buf.Len() == 0 {
		t.Error("Expected log output")
	}

	if !bytes.Contains(buf.Bytes(), []byte("GET")) {
		t.Errorf("Expected log to contain method, got: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("/test")) {
		t.Errorf("Expected log to contain path, got: %s", buf.String())
	}
}

func TestLogger_LogsStatusCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := createTestLogger()

	router := gin.New()
	router.Use(Logger(logger))

	router.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/notfound", func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})

	req := httptest.NewRequest("GET", "/ok", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if !bytes.Contains(buf.Bytes(), []byte("200")) {
		t.Errorf("Expected log to contain status 200")
	}

	buf.Reset()

	req = httptest.NewRequest("GET", "/notfound", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if !bytes.Contains(buf.Bytes(), []byte("404")) {
		t.Errorf("Expected log to contain status 404")
	}
}

func TestLogger_IncludesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := createTestLogger()

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger(logger))

	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "test-request-id-42")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if !bytes.Contains(buf.Bytes(), []byte("test-request-id-42")) {
		t.Errorf("Expected log to contain the request id, got: %s", buf.String())
	}
}

func TestRequestID_SetsHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())

	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header to be set")
	}
}

func TestRequestID_UsesProvidedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())

	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	providedID := "custom-request-id-123"

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", providedID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != providedID {
		t.Errorf("Expected request ID '%s', got '%s'", providedID, got)
	}
}

func TestRecovery_RecoversPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := createTestLogger()

	router := gin.New()
	router.Use(Recovery(logger))

	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})
	router.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if buf.Len() == 0 {
		t.Error("Expected panic to be logged")
	}

	// The server keeps serving after a panic
	req = httptest.NewRequest("GET", "/ok", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 after panic, got %d", w.Code)
	}
}
