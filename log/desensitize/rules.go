package desensitize

import (
	"fmt"
	"regexp"
	"sync/atomic"
)

// Rule 脱敏规则接口
type Rule interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
	// Process 对字符串进行脱敏处理
	Process(s string) string
}

// toggle 规则名称与启用状态，供各规则嵌入
type toggle struct {
	name    string
	enabled atomic.Bool
}

func (t *toggle) init(name string) {
	t.name = name
	t.enabled.Store(true)
}

func (t *toggle) Name() string {
	return t.name
}

func (t *toggle) Enabled() bool {
	return t.enabled.Load()
}

func (t *toggle) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

// ContentRule 基于内容匹配的脱敏规则
type ContentRule struct {
	toggle
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule 创建基于内容匹配的脱敏规则
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}

	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	r := &ContentRule{
		pattern:     regex,
		replacement: replacement,
	}
	r.init(name)
	return r, nil
}

// MustNewContentRule 创建规则，失败则 panic（用于内置规则）
func MustNewContentRule(name, pattern, replacement string) *ContentRule {
	rule, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *ContentRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 基于 JSON 字段名匹配的脱敏规则，只替换字段值
type FieldRule struct {
	toggle
	fieldName   string
	valueRegex  *regexp.Regexp
	replacement string
	jsonPattern *regexp.Regexp
}

// NewFieldRule 创建基于字段名匹配的脱敏规则
func NewFieldRule(name, fieldName, pattern, replacement string) (*FieldRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	if fieldName == "" {
		return nil, fmt.Errorf("field name cannot be empty")
	}
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}

	valueRegex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid field pattern %q: %w", pattern, err)
	}

	jsonPattern, err := regexp.Compile(fmt.Sprintf(`"%s"\s*:\s*"([^"]*)"`, regexp.QuoteMeta(fieldName)))
	if err != nil {
		return nil, fmt.Errorf("failed to compile json pattern: %w", err)
	}

	r := &FieldRule{
		fieldName:   fieldName,
		valueRegex:  valueRegex,
		replacement: replacement,
		jsonPattern: jsonPattern,
	}
	r.init(name)
	return r, nil
}

// MustNewFieldRule 创建规则，失败则 panic
func MustNewFieldRule(name, fieldName, pattern, replacement string) *FieldRule {
	rule, err := NewFieldRule(name, fieldName, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *FieldRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}

	return r.jsonPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := r.jsonPattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		// 保持字段名和引号，只替换值
		return fmt.Sprintf(`"%s":"%s"`, r.fieldName, r.valueRegex.ReplaceAllString(sub[1], r.replacement))
	})
}
