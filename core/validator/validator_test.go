package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/kochabx/ecckit/errors"
)

type publicKey struct {
	X string `json:"x" validate:"required,hex64"`
	Y string `json:"y" validate:"required,hex64"`
}

type envelope struct {
	TempPublicKey publicKey `json:"tempPublicKey"`
	IV            string    `json:"iv" validate:"required,ivhex"`
	Ciphertext    string    `json:"ciphertext" validate:"required,hexadecimal"`
}

const gx = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func TestValidatorCreation(t *testing.T) {
	assert.NotNil(t, Validate)
	assert.NotNil(t, New())
	assert.NotNil(t, New(WithTranslator("en"), WithDefaultLang("en")).Engine())
}

func TestValidEnvelope(t *testing.T) {
	env := envelope{
		TempPublicKey: publicKey{X: gx, Y: strings.ToUpper(gx)},
		IV:            "000102030405060708090a0b",
		Ciphertext:    "deadbeef",
	}
	assert.NoError(t, Validate.Struct(&env))
}

func TestInvalidEnvelope(t *testing.T) {
	env := envelope{
		TempPublicKey: publicKey{X: gx[:62], Y: "zz" + gx[2:]},
		IV:            "0001",
		Ciphertext:    "",
	}

	err := Validate.Struct(&env)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	assert.True(t, HasFieldError(err, "x"))
	assert.True(t, HasFieldError(err, "y"))
	assert.True(t, HasFieldError(err, "iv"))
	assert.True(t, HasFieldError(err, "ciphertext"))
	assert.False(t, HasFieldError(err, "tempPublicKey"))

	assert.Contains(t, err.Error(), "x must be exactly 64 hexadecimal characters")
	assert.Contains(t, err.Error(), "iv must be exactly 24 hexadecimal characters")
}

func TestErrorsDoNotEchoValues(t *testing.T) {
	secret := "not-a-hex-private-key-value"
	err := Validate.Var("privateKeyHex", secret, "required,hex64")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), secret)
	assert.Equal(t, "privateKeyHex must be exactly 64 hexadecimal characters", err.Error())
}

func TestDERShape(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"minimal sequence", "3006020101020101", true},
		{"wrong tag", "3106020101020101", false},
		{"too short", "30060201", false},
		{"odd length", "30060201010201011", false},
		{"not hex", "3006020101020zzz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate.Var("signatureDER", tt.value, TagDERHex)
			assert.Equal(t, tt.valid, err == nil, "err = %v", err)
		})
	}
}

func TestTranslate(t *testing.T) {
	err := Validate.Var("iv", "00", TagIV)
	require.Error(t, err)

	var ve ValidationErrors
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Errors(), 1)

	fe := ve.Errors()[0]
	assert.Equal(t, "iv", fe.Field())
	assert.Equal(t, TagIV, fe.Tag())
	assert.Equal(t, "iv必须是24位十六进制字符", fe.Translate("zh"))
	assert.Equal(t, fe.Message(), fe.Translate("fr"))
}

func TestToError(t *testing.T) {
	assert.NoError(t, ToError(nil))

	err := ToError(Validate.Struct(&envelope{}))
	require.Error(t, err)
	assert.True(t, kerrors.IsValidation(err))

	ke := kerrors.FromError(err)
	assert.Contains(t, ke.GetMetadata()["fields"], "iv")
}

func TestToValidationResult(t *testing.T) {
	assert.True(t, ToValidationResult(nil).Valid)

	result := ToValidationResult(Validate.Var("x", "12", TagHex64))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "x", result.Errors[0].Field)
	assert.Equal(t, TagHex64, result.Errors[0].Tag)
}
