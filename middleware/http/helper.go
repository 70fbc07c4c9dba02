package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderRequestID 请求 ID 头
	HeaderRequestID = "X-Request-Id"
	// HeaderSignature DER 编码的十六进制签名头
	HeaderSignature = "X-Signature"
	// HeaderPublicKey 签名方公钥头，格式 "x:y"
	HeaderPublicKey = "X-Public-Key"

	ctxKeyRequestID = "eccd.request_id"
	ctxKeyPublicKey = "eccd.public_key"
)

// Skipper 所有中间件共用的跳过规则
type Skipper struct {
	SkipPaths []string                // 跳过的路径，支持精确、"/**" 前缀与 glob 三种写法
	SkipFunc  func(*gin.Context) bool // 动态跳过判断函数
}

func (s Skipper) compile() func(*gin.Context) bool {
	matcher := NewPathMatcher(s.SkipPaths)
	return func(c *gin.Context) bool {
		if s.SkipFunc != nil && s.SkipFunc(c) {
			return true
		}
		return matcher.Match(c.Request.URL.Path)
	}
}

// PathMatcher 路径匹配器
type PathMatcher struct {
	exact    map[string]struct{}
	prefixes []string
	patterns []string
}

// NewPathMatcher 创建路径匹配器
//
//   - "/api/health" 精确匹配
//   - "/api/secure/**" 匹配 "/api/secure" 及其所有子路径
//   - "/api/*/verify" 使用 path.Match
func NewPathMatcher(paths []string) *PathMatcher {
	pm := &PathMatcher{exact: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if prefix, ok := strings.CutSuffix(p, "/**"); ok {
			pm.prefixes = append(pm.prefixes, prefix)
		} else if strings.ContainsAny(p, "*?[") {
			pm.patterns = append(pm.patterns, p)
		} else {
			pm.exact[p] = struct{}{}
		}
	}
	return pm
}

// Match 检查路径是否匹配
func (pm *PathMatcher) Match(urlPath string) bool {
	if pm == nil {
		return false
	}
	if _, ok := pm.exact[urlPath]; ok {
		return true
	}

	for _, prefix := range pm.prefixes {
		rest, ok := strings.CutPrefix(urlPath, prefix)
		if ok && (rest == "" || rest[0] == '/') {
			return true
		}
	}

	for _, pattern := range pm.patterns {
		if matched, _ := path.Match(pattern, urlPath); matched {
			return true
		}
	}
	return false
}

// RequestID 返回 Logger 中间件分配的请求 ID
func RequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}
