package validator

import (
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

const (
	// TagHex64 恰好 64 个十六进制字符（256 位标量或坐标）
	TagHex64 = "hex64"
	// TagDERHex 十六进制 DER 签名的外形校验
	TagDERHex = "derhex"
	// TagIV 24 个十六进制字符（12 字节 GCM nonce）
	TagIV = "ivhex"
)

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]*$`)

func isHex(s string) bool {
	return hexPattern.MatchString(s)
}

func hex64(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) == 64 && isHex(s)
}

func ivHex(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) == 24 && isHex(s)
}

// derHex 只校验外形：偶数长度、至少 8 字节、以 SEQUENCE 标签 30 开头
func derHex(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) >= 16 && len(s)%2 == 0 && strings.HasPrefix(s, "30") && isHex(s)
}

type customRule struct {
	tag string
	fn  validator.Func
	msg map[string]string
}

var customRules = []customRule{
	{TagHex64, hex64, map[string]string{
		"en": "{0} must be exactly 64 hexadecimal characters",
		"zh": "{0}必须是64位十六进制字符",
	}},
	{TagIV, ivHex, map[string]string{
		"en": "{0} must be exactly 24 hexadecimal characters",
		"zh": "{0}必须是24位十六进制字符",
	}},
	{TagDERHex, derHex, map[string]string{
		"en": "{0} must be a hex encoded DER signature",
		"zh": "{0}必须是十六进制编码的DER签名",
	}},
}

func registerRules(v *validator.Validate) {
	for _, r := range customRules {
		// 标签名固定且函数非空，注册不会失败
		_ = v.RegisterValidation(r.tag, r.fn)
	}
}

func registerRuleTranslations(v *validator.Validate, lang string, trans ut.Translator) {
	for _, r := range customRules {
		text, ok := r.msg[lang]
		if !ok {
			continue
		}
		_ = v.RegisterTranslation(r.tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(r.tag, text, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
	}
}
