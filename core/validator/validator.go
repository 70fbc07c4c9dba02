package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// validatorImpl 校验器实现。构建完成后只读，可并发使用
type validatorImpl struct {
	validator    *validator.Validate
	uni          *ut.UniversalTranslator
	translators  map[string]ut.Translator
	enabledLangs []string
	defaultLang  string
}

// Validate 全局校验器实例
var Validate = New()

// New 创建新的校验器实例，已注册 hex64、ivhex、derhex 规则
func New(opts ...Option) Validator {
	v := &validatorImpl{
		validator:    validator.New(validator.WithRequiredStructEnabled()),
		translators:  make(map[string]ut.Translator),
		enabledLangs: []string{"en", "zh"},
		defaultLang:  "en",
	}

	enLocale := en.New()
	v.uni = ut.New(enLocale, enLocale, zh.New())

	for _, opt := range opts {
		opt(v)
	}

	v.validator.RegisterTagNameFunc(jsonFieldName)
	registerRules(v.validator)
	v.initTranslators()

	return v
}

// jsonFieldName 错误消息中使用 json 标签名，与线上字段一致
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func (v *validatorImpl) initTranslators() {
	for _, lang := range v.enabledLangs {
		trans, found := v.uni.GetTranslator(lang)
		if !found {
			continue
		}
		switch lang {
		case "en":
			_ = en_translations.RegisterDefaultTranslations(v.validator, trans)
		case "zh":
			_ = zh_translations.RegisterDefaultTranslations(v.validator, trans)
		default:
			continue
		}
		registerRuleTranslations(v.validator, lang, trans)
		v.translators[lang] = trans
	}
}

func (v *validatorImpl) Struct(s any) error {
	return v.StructCtx(context.Background(), s)
}

func (v *validatorImpl) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}
	return v.translate(v.validator.StructCtx(ctx, s))
}

func (v *validatorImpl) Var(name string, value any, tag string) error {
	err := v.validator.Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	return v.translateNamed(ve, name)
}

func (v *validatorImpl) Engine() *validator.Validate {
	return v.validator
}

func (v *validatorImpl) translate(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	return v.translateNamed(ve, "")
}

// translateNamed 将 validator 错误转换为带翻译消息的 ValidationErrors。
// name 非空时覆盖字段名（Var 校验没有字段名）
func (v *validatorImpl) translateNamed(ve validator.ValidationErrors, name string) error {
	trans := v.translators[v.defaultLang]

	out := &validationErrorsImpl{fieldErrors: make([]FieldError, 0, len(ve))}
	messages := make([]string, 0, len(ve))
	for _, fe := range ve {
		f := &fieldErrorImpl{
			fieldError:  fe,
			name:        name,
			translators: v.translators,
		}
		f.message = f.render(trans)
		out.fieldErrors = append(out.fieldErrors, f)
		messages = append(messages, f.message)
	}
	out.message = strings.Join(messages, "; ")
	return out
}
