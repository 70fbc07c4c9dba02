package validator

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// Validator 校验器接口
type Validator interface {
	// Struct 校验结构体
	Struct(s any) error
	// StructCtx 带上下文校验结构体
	StructCtx(ctx context.Context, s any) error
	// Var 按标签校验单个值，name 用于错误消息
	Var(name string, value any, tag string) error
	// Engine 返回底层 validator 实例
	Engine() *validator.Validate
}

// ValidationErrors 校验错误集合
type ValidationErrors interface {
	error
	Errors() []FieldError
}

// FieldError 单个字段的校验错误。不暴露字段值，避免泄露密钥材料
type FieldError interface {
	// Field 字段名（优先使用 json 标签名）
	Field() string
	Tag() string
	Message() string
	// Translate 翻译错误消息
	Translate(lang string) string
}

// Option 校验器选项
type Option func(*validatorImpl)

// WithTranslator 启用指定语言的翻译器
func WithTranslator(langs ...string) Option {
	return func(v *validatorImpl) {
		v.enabledLangs = langs
	}
}

// WithDefaultLang 设置错误消息默认语言
func WithDefaultLang(lang string) Option {
	return func(v *validatorImpl) {
		v.defaultLang = lang
	}
}
