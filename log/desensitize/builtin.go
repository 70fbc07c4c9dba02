package desensitize

const mask = "******"

var (
	// PrivateKeyRule 私钥字段脱敏 ("privateKey":"1a2b..." -> "privateKey":"******")
	PrivateKeyRule = MustNewFieldRule("private_key", "privateKey", `.+`, mask)

	// PrivateKeyHexRule 十六进制私钥字段脱敏
	PrivateKeyHexRule = MustNewFieldRule("private_key_hex", "privateKeyHex", `.+`, mask)

	// SnakePrivateKeyRule 下划线风格的私钥字段脱敏
	SnakePrivateKeyRule = MustNewFieldRule("snake_private_key", "private_key", `.+`, mask)

	// SharedSecretRule ECDH 共享密钥字段脱敏
	SharedSecretRule = MustNewFieldRule("shared_secret", "sharedSecret", `.+`, mask)

	// PlaintextRule 解密明文字段脱敏
	PlaintextRule = MustNewFieldRule("plaintext", "plaintext", `.+`, mask)

	// SecretRule secret 字段脱敏
	SecretRule = MustNewFieldRule("secret", "secret", `.+`, mask)

	// PEMRule PEM 私钥块脱敏，保留首尾标记
	PEMRule = MustNewContentRule(
		"pem",
		`(-----BEGIN [A-Z ]*PRIVATE KEY-----)[^-]+(-----END [A-Z ]*PRIVATE KEY-----)`,
		"$1"+mask+"$2",
	)
)

// BuiltinRules 返回所有内置规则
func BuiltinRules() []Rule {
	return []Rule{
		PrivateKeyRule,
		PrivateKeyHexRule,
		SnakePrivateKeyRule,
		SharedSecretRule,
		PlaintextRule,
		SecretRule,
		PEMRule,
	}
}

// KeyMaterialHook 返回加载了全部内置规则的钩子
func KeyMaterialHook() *Hook {
	h := NewHook()
	h.AddBuiltin(BuiltinRules()...)
	return h
}
