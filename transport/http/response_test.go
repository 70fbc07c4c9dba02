package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	eccerrors "github.com/kochabx/ecckit/errors"
)

func TestGinJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		data any
		want string
	}{
		{
			name: "string data",
			data: "04a1b2",
			want: `{"code":200,"msg":"success","data":"04a1b2"}`,
		},
		{
			name: "map data",
			data: map[string]bool{"isValid": true},
			want: `{"code":200,"msg":"success","data":{"isValid":true}}`,
		},
		{
			name: "nil data",
			data: nil,
			want: `{"code":200,"msg":"success"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			GinJSON(c, tt.data)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestGinJSONE(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		code int
		data any
		want string
	}{
		{
			name: "with engine error",
			code: 10001,
			data: eccerrors.New(10001, "key store unavailable"),
			want: `{"code":10001,"msg":"key store unavailable"}`,
		},
		{
			name: "with standard error",
			code: 500,
			data: errors.New("standard error"),
			want: `{"code":500,"msg":"standard error"}`,
		},
		{
			name: "with string message",
			code: 400,
			data: "bad request",
			want: `{"code":400,"msg":"bad request"}`,
		},
		{
			name: "with nil",
			code: 500,
			data: nil,
			want: `{"code":500,"msg":"operation failed"}`,
		},
		{
			name: "with data object",
			code: 201,
			data: map[string]any{"id": 123},
			want: `{"code":201,"data":{"id":123}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			GinJSONE(c, tt.code, tt.data)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestGinError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation",
			err: eccerrors.Validation("signatureDER is not valid hex").
				WithMetadata(map[string]string{"param": "signatureDER"}),
			want: `{"code":400,"msg":"signatureDER is not valid hex","kind":"ECC_VALIDATION_ERROR","param":"signatureDER"}`,
		},
		{
			name: "wrapped crypto",
			err:  fmt.Errorf("decrypt: %w", eccerrors.Crypto("authentication failed")),
			want: `{"code":500,"msg":"authentication failed","kind":"ECC_CRYPTO_ERROR"}`,
		},
		{
			name: "coded error keeps its code",
			err:  eccerrors.NotFound("no such key"),
			want: `{"code":404,"msg":"no such key","kind":"ECC_ERROR"}`,
		},
		{
			name: "plain error is hidden",
			err:  errors.New("open /etc/eccd/key: permission denied"),
			want: `{"code":500,"msg":"operation failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			GinError(c, tt.err)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestGinJSONWithNilContext(t *testing.T) {
	assert.NotPanics(t, func() {
		GinJSON(nil, "test")
		GinJSONE(nil, 500, "error")
		GinError(nil, errors.New("error"))
	})
}

func TestSuccess(t *testing.T) {
	resp := Success("test data")

	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "success", resp.Msg)
	assert.Equal(t, "test data", resp.Data)
}

func TestFailure(t *testing.T) {
	resp := Failure(404, "not found")

	assert.Equal(t, 404, resp.Code)
	assert.Equal(t, "not found", resp.Msg)
	assert.Nil(t, resp.Data)
}

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "operation failed"},
		{"engine error", eccerrors.Crypto("shared secret is the point at infinity"), "shared secret is the point at infinity"},
		{"standard error", errors.New("standard message"), "standard message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractErrorMessage(tt.err))
		})
	}
}

func BenchmarkGinError(b *testing.B) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	testErr := eccerrors.Validation("message is required")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		c.Errors = c.Errors[:0]
		GinError(c, testErr)
	}
}
