package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/ecckit/core/crypto/ecdsa"
	"github.com/kochabx/ecckit/core/crypto/ecies"
	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/core/rate"
	"github.com/kochabx/ecckit/log"
	"github.com/kochabx/ecckit/log/desensitize"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelopeResponse struct {
	Code  int             `json:"code"`
	Msg   string          `json:"msg"`
	Kind  string          `json:"kind"`
	Data  json.RawMessage `json:"data"`
	Param string          `json:"param"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) envelopeResponse {
	t.Helper()
	var resp envelopeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// echoRouter 返回一个把请求体原样回显的路由
func echoRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func mustKey(t testing.TB) *secp256k1.PrivateKey {
	t.Helper()
	key, err := secp256k1.NewPrivateKey()
	require.NoError(t, err)
	return key
}

func TestPathMatcher(t *testing.T) {
	pm := NewPathMatcher([]string{"/api/health", "/api/secure/**", "/api/*/verify"})

	tests := []struct {
		path string
		want bool
	}{
		{"/api/health", true},
		{"/api/health/x", false},
		{"/api/secure", true},
		{"/api/secure/decrypt", true},
		{"/api/securex", false},
		{"/api/signature/verify", true},
		{"/api/signature/verify/batch", false},
		{"/metrics", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, pm.Match(tt.path))
		})
	}

	var nilMatcher *PathMatcher
	assert.False(t, nilMatcher.Match("/api/health"))
}

func TestLoggerRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := echoRouter(Logger(LoggerConfig{Logger: log.NewWriter(&buf)}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hi")))
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Contains(t, buf.String(), generated)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hi"))
	req.Header.Set(HeaderRequestID, "req-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

func TestLoggerMasksKeyMaterial(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWriter(&buf, log.WithDesensitize(desensitize.KeyMaterialHook()))
	r := echoRouter(Logger(LoggerConfig{RequestBody: true, Logger: logger}))

	secret := strings.Repeat("ab", 32)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo",
		strings.NewReader(`{"message":"hello","privateKeyHex":"`+secret+`"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), secret, "handler still sees the body")
	assert.NotContains(t, buf.String(), secret)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestLoggerSkipPaths(t *testing.T) {
	var buf bytes.Buffer
	r := echoRouter(Logger(LoggerConfig{
		Skipper: Skipper{SkipPaths: []string{"/health"}},
		Logger:  log.NewWriter(&buf),
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.Zero(t, buf.Len())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(RecoveryConfig{Logger: log.Nop()}))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	resp := decodeResponse(t, w)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "internal server error", resp.Msg)
}

func TestCors(t *testing.T) {
	r := echoRouter(Cors(CorsConfig{
		AllowOrigins:  []string{"https://app.example.com", "*.eccd.dev"},
		AllowMethods:  []string{"POST"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        600,
	}))

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"exact", "https://app.example.com", "https://app.example.com"},
		{"wildcard", "https://ui.eccd.dev", "https://ui.eccd.dev"},
		{"denied", "https://evil.example.org", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/echo", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.want != "" {
				assert.Equal(t, http.StatusNoContent, w.Code)
				assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestCryptoDecryptsEnvelope(t *testing.T) {
	key := mustKey(t)
	defer key.Destroy()

	env, err := ecies.Encrypt("top secret payload", key.PublicKeyHex())
	require.NoError(t, err)

	r := echoRouter(Crypto(CryptoConfig{Decryptor: ECIESDecryptor(key), Logger: log.Nop()}))

	t.Run("nested", func(t *testing.T) {
		body, _ := json.Marshal(env)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "top secret payload", w.Body.String())
	})

	t.Run("wrapped", func(t *testing.T) {
		inner, _ := json.Marshal(env)
		body := `{"encryptedData":` + string(inner) + `,"clientTimestamp":"2026-01-02T03:04:05Z"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "top secret payload", w.Body.String())
	})

	t.Run("flat", func(t *testing.T) {
		body, _ := json.Marshal(env.Flatten())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "top secret payload", w.Body.String())
	})
}

func TestCryptoRejects(t *testing.T) {
	key := mustKey(t)
	defer key.Destroy()
	other := mustKey(t)
	defer other.Destroy()

	foreign, err := ecies.Encrypt("not for you", other.PublicKeyHex())
	require.NoError(t, err)
	foreignBody, _ := json.Marshal(foreign)

	r := echoRouter(Crypto(CryptoConfig{
		Skipper:   Skipper{SkipPaths: []string{"/health"}},
		Decryptor: ECIESDecryptor(key),
		Logger:    log.Nop(),
	}))

	tests := []struct {
		name string
		body string
		code int
		kind string
	}{
		{"not json", "plain text", 400, "ECC_VALIDATION_ERROR"},
		{"empty envelope", "{}", 400, "ECC_VALIDATION_ERROR"},
		{"wrong recipient", string(foreignBody), 500, "ECC_CRYPTO_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(tt.body)))

			resp := decodeResponse(t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.kind, resp.Kind)
		})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok", w.Body.String())
}

func TestCryptoRequiresDecryptor(t *testing.T) {
	assert.Panics(t, func() { Crypto(CryptoConfig{}) })
}

func signedRequest(t *testing.T, key *secp256k1.PrivateKey, body string) *http.Request {
	t.Helper()
	sig, err := ecdsa.Sign(body, key.Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set(HeaderSignature, sig)
	req.Header.Set(HeaderPublicKey, key.PublicKeyHex().String())
	return req
}

func TestSignature(t *testing.T) {
	key := mustKey(t)
	defer key.Destroy()

	var signer secp256k1.PublicKeyHex
	r := echoRouter(Signature(SignatureConfig{Logger: log.Nop()}))
	r.POST("/whoami", Signature(SignatureConfig{Logger: log.Nop()}), func(c *gin.Context) {
		signer, _ = SignerPublicKey(c)
		c.Status(http.StatusOK)
	})

	t.Run("valid", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, signedRequest(t, key, `{"amount":10}`))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `{"amount":10}`, w.Body.String(), "body is restored for the handler")
	})

	t.Run("signer exposed", func(t *testing.T) {
		req := signedRequest(t, key, "ping")
		req.URL.Path = "/whoami"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, key.PublicKeyHex(), signer)
	})

	t.Run("tampered body", func(t *testing.T) {
		req := signedRequest(t, key, `{"amount":10}`)
		req.Body = io.NopCloser(strings.NewReader(`{"amount":99}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		resp := decodeResponse(t, w)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, ErrSignatureFailed.Message, resp.Msg)
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("x")))
		assert.Equal(t, http.StatusUnauthorized, decodeResponse(t, w).Code)
	})

	t.Run("malformed signature", func(t *testing.T) {
		req := signedRequest(t, key, "x")
		req.Header.Set(HeaderSignature, "zz")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		resp := decodeResponse(t, w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "ECC_VALIDATION_ERROR", resp.Kind)
	})

	t.Run("malformed public key", func(t *testing.T) {
		req := signedRequest(t, key, "x")
		req.Header.Set(HeaderPublicKey, "abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, decodeResponse(t, w).Code)
	})
}

func TestSignatureOptionalAndTrusted(t *testing.T) {
	key := mustKey(t)
	defer key.Destroy()
	stranger := mustKey(t)
	defer stranger.Destroy()

	r := echoRouter(Signature(SignatureConfig{
		Optional:    true,
		TrustedKeys: []secp256k1.PublicKeyHex{key.PublicKeyHex()},
		Logger:      log.Nop(),
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("unsigned")))
	assert.Equal(t, "unsigned", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest(t, key, "trusted"))
	assert.Equal(t, "trusted", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest(t, stranger, "stranger"))
	resp := decodeResponse(t, w)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, ErrPublicKeyUntrusted.Message, resp.Msg)
}

func TestRateLimit(t *testing.T) {
	remaining := map[string]int{"192.0.2.1": 1}
	limiter := rate.LimiterFunc(func(_ context.Context, key string, _ time.Time, n int) (bool, error) {
		if key == "broken" {
			return false, errors.New("redis: connection refused")
		}
		if remaining[key] < n {
			return false, nil
		}
		remaining[key] -= n
		return true, nil
	})

	r := echoRouter(RateLimit(RateLimitConfig{
		Limiter: limiter,
		KeyFunc: func(c *gin.Context) string {
			if k := c.GetHeader("X-Limit-Key"); k != "" {
				return k
			}
			return c.ClientIP()
		},
		Logger: log.Nop(),
	}))

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("x"))
		req.RemoteAddr = "192.0.2.1:4000"
		if key != "" {
			req.Header.Set("X-Limit-Key", key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, "x", send("").Body.String())
	assert.Equal(t, http.StatusTooManyRequests, decodeResponse(t, send("")).Code)
	assert.Equal(t, http.StatusInternalServerError, decodeResponse(t, send("broken")).Code)

	open := echoRouter(RateLimit(RateLimitConfig{
		Limiter:  limiter,
		KeyFunc:  func(*gin.Context) string { return "broken" },
		FailOpen: true,
		Logger:   log.Nop(),
	}))
	w := httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("y")))
	assert.Equal(t, "y", w.Body.String())
}
