package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/ecckit/core/crypto/ecies"
	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/errors"
	"github.com/kochabx/ecckit/log"
	"github.com/kochabx/ecckit/transport/http"
	"github.com/kochabx/ecckit/transport/http/metrics"
)

var (
	ErrEnvelopeMalformed = errors.Validation("request body is not a valid encrypted envelope")
)

// Decryptor 解密器接口
type Decryptor interface {
	Decrypt(env *ecies.Envelope) (string, error)
}

// DecryptorFunc 解密器函数适配器
type DecryptorFunc func(env *ecies.Envelope) (string, error)

func (f DecryptorFunc) Decrypt(env *ecies.Envelope) (string, error) {
	return f(env)
}

// ECIESDecryptor 使用服务端私钥解密，key 由调用方持有并负责销毁
func ECIESDecryptor(key *secp256k1.PrivateKey, opts ...secp256k1.Option) Decryptor {
	return DecryptorFunc(func(env *ecies.Envelope) (string, error) {
		return ecies.DecryptWithKey(env, key, opts...)
	})
}

// CryptoConfig 加密请求体中间件配置
type CryptoConfig struct {
	Skipper
	Decryptor    Decryptor                 // 解密器（必需）
	ErrorHandler func(*gin.Context, error) // 错误处理函数
	Logger       *log.Logger               // 自定义日志记录器
	Metrics      *metrics.Prometheus       // 为空时不记录指标
}

// envelopeBody 同时接受嵌套与扁平两种信封格式，也接受 {"encryptedData": 信封} 的包装
type envelopeBody struct {
	EncryptedData       json.RawMessage         `json:"encryptedData"`
	TempPublicKey       *secp256k1.PublicKeyHex `json:"tempPublicKey"`
	EphemeralPublicKeyX string                  `json:"ephemeralPublicKeyX"`
	EphemeralPublicKeyY string                  `json:"ephemeralPublicKeyY"`
	IV                  string                  `json:"iv"`
	Ciphertext          string                  `json:"ciphertext"`
}

func (b *envelopeBody) envelope() *ecies.Envelope {
	if b.TempPublicKey != nil {
		return &ecies.Envelope{TempPublicKey: *b.TempPublicKey, IV: b.IV, Ciphertext: b.Ciphertext}
	}
	return ecies.FlatEnvelope{
		EphemeralPublicKeyX: b.EphemeralPublicKeyX,
		EphemeralPublicKeyY: b.EphemeralPublicKeyY,
		IV:                  b.IV,
		Ciphertext:          b.Ciphertext,
	}.Envelope()
}

// Crypto 将 ECIES 信封请求体解密为明文后交给后续处理器
func Crypto(cfg CryptoConfig) gin.HandlerFunc {
	if cfg.Decryptor == nil {
		panic("middleware: Decryptor is required")
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
	skip := cfg.compile()

	return func(c *gin.Context) {
		if skip(c) {
			c.Next()
			return
		}

		start := time.Now()
		plaintext, err := decryptBody(c, cfg.Decryptor)
		if cfg.Metrics != nil {
			cfg.Metrics.Observe("secure_decrypt", start, err)
		}
		if err != nil {
			cfg.Logger.Warn().
				Str("request_id", RequestID(c)).
				Str("kind", errors.KindOf(err).String()).
				Msg("crypto: decrypt request body failed")
			cfg.ErrorHandler(c, err)
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewBufferString(plaintext))
		c.Request.ContentLength = int64(len(plaintext))

		c.Next()
	}
}

func decryptBody(c *gin.Context, d Decryptor) (string, error) {
	body, err := c.GetRawData()
	if err != nil {
		return "", errors.WrapValidation(err, "read request body")
	}

	var b envelopeBody
	if err := json.Unmarshal(body, &b); err != nil {
		return "", ErrEnvelopeMalformed.WithCause(err)
	}
	if len(b.EncryptedData) > 0 {
		inner := envelopeBody{}
		if err := json.Unmarshal(b.EncryptedData, &inner); err != nil {
			return "", ErrEnvelopeMalformed.WithCause(err)
		}
		b = inner
	}
	return d.Decrypt(b.envelope())
}
