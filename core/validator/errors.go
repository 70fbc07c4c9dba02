package validator

import (
	"errors"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	kerrors "github.com/kochabx/ecckit/errors"
)

type validationErrorsImpl struct {
	fieldErrors []FieldError
	message     string
}

func (ve *validationErrorsImpl) Error() string {
	return ve.message
}

func (ve *validationErrorsImpl) Errors() []FieldError {
	return ve.fieldErrors
}

type fieldErrorImpl struct {
	fieldError  validator.FieldError
	name        string
	message     string
	translators map[string]ut.Translator
}

func (fe *fieldErrorImpl) Field() string {
	if fe.name != "" {
		return fe.name
	}
	return fe.fieldError.Field()
}

func (fe *fieldErrorImpl) Tag() string {
	return fe.fieldError.Tag()
}

func (fe *fieldErrorImpl) Message() string {
	return fe.message
}

func (fe *fieldErrorImpl) Translate(lang string) string {
	if trans, ok := fe.translators[lang]; ok {
		return fe.render(trans)
	}
	return fe.message
}

// render 翻译消息。Var 校验没有字段名，翻译结果以空白开头，补上 name
func (fe *fieldErrorImpl) render(trans ut.Translator) string {
	if trans == nil {
		return fe.fieldError.Error()
	}
	msg := fe.fieldError.Translate(trans)
	if fe.name != "" && fe.fieldError.Field() == "" {
		msg = fe.name + msg
	}
	return msg
}

// ValidationResult 校验结果
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError 校验错误详情
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ToValidationResult 将错误转换为校验结果
func ToValidationResult(err error) *ValidationResult {
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	result := &ValidationResult{Valid: false}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve.Errors() {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Message: fe.Message(),
			})
		}
	}
	return result
}

// ToError 将校验错误转换为 ECC_VALIDATION_ERROR，字段名放入 metadata
func ToError(err error) error {
	if err == nil {
		return nil
	}

	var ve ValidationErrors
	if !errors.As(err, &ve) {
		return kerrors.WrapValidation(err, "%s", err.Error())
	}

	fields := make([]string, 0, len(ve.Errors()))
	for _, fe := range ve.Errors() {
		fields = append(fields, fe.Field())
	}
	return kerrors.Validation("%s", ve.Error()).
		WithMetadata(map[string]string{"fields": strings.Join(fields, ",")})
}

// HasFieldError 检查是否存在指定字段的错误
func HasFieldError(err error, field string) bool {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve.Errors() {
			if fe.Field() == field {
				return true
			}
		}
	}
	return false
}

// IsValidationError 检查是否为校验错误
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
