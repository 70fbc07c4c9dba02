// Package api implements the eccd HTTP endpoints on top of the engine packages.
package api

import (
	"io"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/ecckit/core/crypto/der"
	"github.com/kochabx/ecckit/core/crypto/ecdsa"
	"github.com/kochabx/ecckit/core/crypto/ecies"
	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/core/validator"
	"github.com/kochabx/ecckit/errors"
	"github.com/kochabx/ecckit/log"
	"github.com/kochabx/ecckit/transport/http"
	"github.com/kochabx/ecckit/transport/http/metrics"
)

// Operation labels recorded in ecc_operations_total.
const (
	OpEncrypt     = "encrypt"
	OpDecrypt     = "decrypt"
	OpSign        = "sign"
	OpVerify      = "verify"
	OpBatchVerify = "verify_batch"
)

// Handler serves the eccd API with a single server key. The key is owned by
// the caller, who destroys it on shutdown.
type Handler struct {
	key     *secp256k1.PrivateKey
	version string
	engine  []secp256k1.Option
	metrics *metrics.Prometheus
	logger  *log.Logger
	now     func() time.Time
}

type Option func(*Handler)

func WithVersion(v string) Option {
	return func(h *Handler) {
		h.version = v
	}
}

// WithEngineOptions passes opts to every engine call.
func WithEngineOptions(opts ...secp256k1.Option) Option {
	return func(h *Handler) {
		h.engine = append(h.engine, opts...)
	}
}

func WithMetrics(p *metrics.Prometheus) Option {
	return func(h *Handler) {
		h.metrics = p
	}
}

func WithLogger(l *log.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func New(key *secp256k1.PrivateKey, opts ...Option) *Handler {
	h := &Handler{
		key:     key,
		version: "dev",
		metrics: metrics.Prom,
		logger:  log.G(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes on r. secure runs in front of /api/secure/*,
// normally the Crypto middleware.
func (h *Handler) Register(r gin.IRouter, secure ...gin.HandlerFunc) {
	r.POST("/auth/server/key", h.ServerKey)

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/time", h.Time)

	c := api.Group("/crypto")
	c.GET("/algorithms", h.Algorithms)
	c.POST("/encrypt", h.Encrypt)
	c.POST("/decrypt", h.Decrypt)

	s := api.Group("/signature")
	s.POST("/sign", h.Sign)
	s.POST("/verify", h.Verify)
	s.POST("/verify/batch", h.BatchVerify)

	api.Group("/secure", secure...).POST("/decrypt", h.SecureEcho)
}

// bind decodes the JSON body into req and validates it.
func bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errors.WrapValidation(err, "request body is not valid JSON")
	}
	return validator.ToError(validator.Validate.StructCtx(c.Request.Context(), req))
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	ev := h.logger.Warn()
	if errors.IsCrypto(err) {
		ev = h.logger.Error()
	}
	ev.Err(err).Str("operation", op).Msg("request failed")
	http.GinError(c, err)
}

func (h *Handler) ServerKey(c *gin.Context) {
	http.GinJSON(c, ServerKeyResponse{
		PublicKey: h.key.PublicKeyHex(),
		Curve:     secp256k1.CurveName,
		Timestamp: h.now(),
	})
}

func (h *Handler) Encrypt(c *gin.Context) {
	start := time.Now()
	var req EncryptRequest
	if err := bind(c, &req); err != nil {
		h.metrics.Observe(OpEncrypt, start, err)
		h.fail(c, OpEncrypt, err)
		return
	}

	recipient := h.key.PublicKeyHex()
	if req.PublicKey != nil {
		recipient = *req.PublicKey
	}

	env, err := ecies.Encrypt(req.Message, recipient, h.engine...)
	h.metrics.Observe(OpEncrypt, start, err)
	if err != nil {
		h.fail(c, OpEncrypt, err)
		return
	}
	http.GinJSON(c, env)
}

func (h *Handler) Decrypt(c *gin.Context) {
	start := time.Now()
	var req DecryptRequest
	if err := bind(c, &req); err != nil {
		h.metrics.Observe(OpDecrypt, start, err)
		h.fail(c, OpDecrypt, err)
		return
	}

	plaintext, err := ecies.DecryptWithKey(req.Envelope(), h.key, h.engine...)
	h.metrics.Observe(OpDecrypt, start, err)
	if err != nil {
		h.fail(c, OpDecrypt, err)
		return
	}
	http.GinJSON(c, DecryptResponse{
		DecryptedData: plaintext,
		Message:       "decrypted",
		Timestamp:     h.now(),
	})
}

func (h *Handler) Sign(c *gin.Context) {
	start := time.Now()
	var req SignRequest
	if err := bind(c, &req); err != nil {
		h.metrics.Observe(OpSign, start, err)
		h.fail(c, OpSign, err)
		return
	}

	sig, err := ecdsa.SignWithKey(req.Message, h.key, h.engine...)
	h.metrics.Observe(OpSign, start, err)
	if err != nil {
		h.fail(c, OpSign, err)
		return
	}

	resp := SignResponse{Signature: sig, PublicKey: h.key.PublicKeyHex()}
	if d, err := signatureDetails(sig); err == nil {
		resp.Details = *d
	}
	http.GinJSON(c, resp)
}

func (h *Handler) Verify(c *gin.Context) {
	start := time.Now()
	var req VerifyRequest
	if err := bind(c, &req); err != nil {
		h.metrics.Observe(OpVerify, start, err)
		h.fail(c, OpVerify, err)
		return
	}

	ok, err := ecdsa.Verify(req.Message, req.Signature, req.PublicKey, h.engine...)
	if err != nil {
		h.metrics.Observe(OpVerify, start, err)
		h.fail(c, OpVerify, err)
		return
	}

	resp := VerifyResponse{IsValid: ok, Message: "signature is valid"}
	if ok {
		h.metrics.ObserveResult(OpVerify, start, metrics.ResultOK)
	} else {
		h.metrics.ObserveResult(OpVerify, start, metrics.ResultRejected)
		resp.Message = "signature is invalid"
	}
	if d, err := signatureDetails(req.Signature); err == nil {
		resp.Details = d
	}
	http.GinJSON(c, resp)
}

func (h *Handler) BatchVerify(c *gin.Context) {
	start := time.Now()
	var req BatchVerifyRequest
	if err := bind(c, &req); err != nil {
		h.metrics.Observe(OpBatchVerify, start, err)
		h.fail(c, OpBatchVerify, err)
		return
	}

	reqs := make([]ecdsa.VerifyRequest, len(req.Items))
	for i, it := range req.Items {
		reqs[i] = ecdsa.VerifyRequest{Message: it.Message, Signature: it.Signature, PublicKey: it.PublicKey}
	}

	results := ecdsa.BatchVerify(c.Request.Context(), reqs, h.engine...)
	resp := BatchVerifyResponse{Results: make([]BatchVerifyItem, len(results)), Total: len(results)}
	for i, r := range results {
		resp.Results[i] = BatchVerifyItem{Index: i, IsValid: r.Valid}
		if r.Err != nil {
			resp.Results[i].Error = errors.FromError(r.Err).Message
		}
		if r.Valid {
			resp.Valid++
		}
	}
	h.metrics.Observe(OpBatchVerify, start, nil)
	http.GinJSON(c, resp)
}

// SecureEcho returns the body that the secure middleware decrypted.
func (h *Handler) SecureEcho(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.fail(c, "secure_echo", errors.WrapValidation(err, "read request body"))
		return
	}
	message := string(body)
	http.GinJSON(c, SecureEchoResponse{Message: message, Length: utf8.RuneCountInString(message)})
}

func (h *Handler) Algorithms(c *gin.Context) {
	http.GinJSON(c, AlgorithmsResponse{
		Algorithms: []Algorithm{
			{Name: "ECDSA-SHA256", Kind: "signature", Description: "secp256k1 ECDSA over SHA-256, DER encoded, low-s"},
			{Name: "ECIES-AES-256-GCM", Kind: "encryption", Description: "ephemeral ECDH, SHA-256 KDF, AES-256-GCM with 12-byte IV"},
			{Name: "ECDH", Kind: "key-agreement", Description: "x coordinate of the shared point"},
		},
		Curves: []secp256k1.CurveInfo{secp256k1.Info()},
		Versions: map[string]string{
			"service": h.version,
			"go":      runtime.Version(),
		},
	})
}

func (h *Handler) Health(c *gin.Context) {
	http.GinJSON(c, HealthResponse{Status: "ok", Timestamp: h.now(), Version: h.version})
}

func (h *Handler) Time(c *gin.Context) {
	now := h.now()
	zone, offset := now.Zone()
	http.GinJSON(c, TimeResponse{Timestamp: now, Timezone: zone, Offset: offset})
}

func signatureDetails(sigHex string) (*SignatureDetails, error) {
	sig, err := der.DecodeHex(sigHex)
	if err != nil {
		return nil, err
	}
	return &SignatureDetails{RS: sig.RS(), LowS: sig.IsLowS()}, nil
}
