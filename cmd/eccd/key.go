package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/errors"
	"github.com/kochabx/ecckit/log"
)

// loadServerKey resolves the server key as described on KeyConfig.
func loadServerKey(c KeyConfig, logger *log.Logger, opts ...secp256k1.Option) (*secp256k1.PrivateKey, error) {
	if c.PrivateKeyHex != "" {
		return secp256k1.ParsePrivateKey(c.PrivateKeyHex)
	}

	if c.File == "" {
		key, err := secp256k1.NewPrivateKey(opts...)
		if err != nil {
			return nil, err
		}
		logger.Warn().Msg("no server key configured, using an ephemeral key")
		return key, nil
	}

	b, err := os.ReadFile(c.File)
	switch {
	case err == nil:
		return secp256k1.ParsePrivateKey(strings.TrimSpace(string(b)))
	case !os.IsNotExist(err):
		return nil, errors.Wrap(err, 500, "read server key file")
	}

	key, err := secp256k1.NewPrivateKey(opts...)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(c.File), 0o700); err != nil {
		key.Destroy()
		return nil, errors.Wrap(err, 500, "create server key directory")
	}
	if err := os.WriteFile(c.File, []byte(key.Hex()+"\n"), 0o600); err != nil {
		key.Destroy()
		return nil, errors.Wrap(err, 500, "write server key file")
	}
	logger.Info().Str("file", c.File).Msg("generated new server key")
	return key, nil
}
