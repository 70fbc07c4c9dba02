package middleware

import (
	"bytes"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/ecckit/core/crypto/ecdsa"
	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/errors"
	"github.com/kochabx/ecckit/log"
	"github.com/kochabx/ecckit/transport/http"
	"github.com/kochabx/ecckit/transport/http/metrics"
)

var (
	ErrSignatureMissing   = errors.New(http.StatusUnauthorized, "signature header is missing")
	ErrSignatureFailed    = errors.New(http.StatusUnauthorized, "signature verification failed")
	ErrPublicKeyUntrusted = errors.New(http.StatusUnauthorized, "public key is not trusted")
)

// Verifier 签名验证器接口
type Verifier interface {
	Verify(message, signatureHex string, publicKey secp256k1.PublicKeyHex) (bool, error)
}

// VerifierFunc 签名验证器函数适配器
type VerifierFunc func(message, signatureHex string, publicKey secp256k1.PublicKeyHex) (bool, error)

func (f VerifierFunc) Verify(message, signatureHex string, publicKey secp256k1.PublicKeyHex) (bool, error) {
	return f(message, signatureHex, publicKey)
}

// ECDSAVerifier 基于 secp256k1 ECDSA 的验证器
func ECDSAVerifier(opts ...secp256k1.Option) Verifier {
	return VerifierFunc(func(message, signatureHex string, publicKey secp256k1.PublicKeyHex) (bool, error) {
		return ecdsa.Verify(message, signatureHex, publicKey, opts...)
	})
}

// SignatureConfig 签名验证中间件配置
type SignatureConfig struct {
	Skipper
	Verifier        Verifier                  // 为空时使用 ECDSAVerifier
	HeaderName      string                    // 签名头名称，默认 "X-Signature"
	PublicKeyHeader string                    // 公钥头名称，默认 "X-Public-Key"
	TrustedKeys     []secp256k1.PublicKeyHex  // 非空时只接受列表中的公钥
	Optional        bool                      // 为 true 时不带签名头的请求直接放行
	MethodEnabled   bool                      // 是否包含请求方法
	PathEnabled     bool                      // 是否包含请求路径
	ErrorHandler    func(*gin.Context, error) // 错误处理函数
	Logger          *log.Logger               // 自定义日志记录器
	Metrics         *metrics.Prometheus       // 为空时不记录指标
}

// Signature 验证请求体的 ECDSA 签名
//
// 待签名消息为 [method][path]body，签名为 DER 编码的十六进制串。
// 验证通过后，签名方公钥可通过 SignerPublicKey 取得。
func Signature(cfgs ...SignatureConfig) gin.HandlerFunc {
	cfg := SignatureConfig{}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Verifier == nil {
		cfg.Verifier = ECDSAVerifier()
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = HeaderSignature
	}
	if cfg.PublicKeyHeader == "" {
		cfg.PublicKeyHeader = HeaderPublicKey
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *gin.Context, err error) {
			http.GinError(c, err)
			c.Abort()
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G()
	}
	trusted := make([]secp256k1.PublicKeyHex, len(cfg.TrustedKeys))
	for i, k := range cfg.TrustedKeys {
		trusted[i] = normalizeKey(k)
	}
	skip := cfg.compile()

	return func(c *gin.Context) {
		if skip(c) {
			c.Next()
			return
		}

		signature := c.GetHeader(cfg.HeaderName)
		if signature == "" {
			if cfg.Optional {
				c.Next()
				return
			}
			cfg.ErrorHandler(c, ErrSignatureMissing)
			return
		}

		start := time.Now()
		pub, err := verifyRequest(c, cfg, signature, trusted)
		if cfg.Metrics != nil {
			if err == ErrSignatureFailed {
				cfg.Metrics.ObserveResult("verify_header", start, metrics.ResultRejected)
			} else {
				cfg.Metrics.Observe("verify_header", start, err)
			}
		}
		if err != nil {
			cfg.Logger.Warn().
				Err(err).
				Str("request_id", RequestID(c)).
				Msg("signature: verify failed")
			cfg.ErrorHandler(c, err)
			return
		}

		c.Set(ctxKeyPublicKey, pub)
		c.Next()
	}
}

func verifyRequest(c *gin.Context, cfg SignatureConfig, signature string, trusted []secp256k1.PublicKeyHex) (secp256k1.PublicKeyHex, error) {
	pub, err := secp256k1.ParsePublicKeyHeader(c.GetHeader(cfg.PublicKeyHeader))
	if err != nil {
		return pub, err
	}
	pub = normalizeKey(pub)
	if len(trusted) > 0 && !slices.Contains(trusted, pub) {
		return pub, ErrPublicKeyUntrusted
	}

	message, err := signedMessage(c, cfg)
	if err != nil {
		return pub, err
	}

	ok, err := cfg.Verifier.Verify(message, signature, pub)
	if err != nil {
		return pub, err
	}
	if !ok {
		return pub, ErrSignatureFailed
	}
	return pub, nil
}

// signedMessage 读取请求体并恢复，供后续处理器再次读取
func signedMessage(c *gin.Context, cfg SignatureConfig) (string, error) {
	var sb strings.Builder
	if cfg.MethodEnabled {
		sb.WriteString(c.Request.Method)
	}
	if cfg.PathEnabled {
		sb.WriteString(c.Request.URL.Path)
	}

	body, err := c.GetRawData()
	if err != nil {
		return "", errors.WrapValidation(err, "read request body")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	sb.Write(body)

	if sb.Len() == 0 {
		return "", errors.Validation("signed request body is empty")
	}
	return sb.String(), nil
}

func normalizeKey(k secp256k1.PublicKeyHex) secp256k1.PublicKeyHex {
	return secp256k1.PublicKeyHex{X: strings.ToLower(k.X), Y: strings.ToLower(k.Y)}
}

// SignerPublicKey 返回已通过验证的签名方公钥
func SignerPublicKey(c *gin.Context) (secp256k1.PublicKeyHex, bool) {
	v, ok := c.Get(ctxKeyPublicKey)
	if !ok {
		return secp256k1.PublicKeyHex{}, false
	}
	pub, ok := v.(secp256k1.PublicKeyHex)
	return pub, ok
}
