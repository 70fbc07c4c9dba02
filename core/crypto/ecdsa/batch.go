package ecdsa

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/kochabx/ecckit/core/crypto/secp256k1"
)

// VerifyRequest is one item of a batch verification.
type VerifyRequest struct {
	Message   string                 `json:"message"`
	Signature string                 `json:"signature"`
	PublicKey secp256k1.PublicKeyHex `json:"publicKey"`
}

// VerifyResult is the outcome for the request at the same index.
type VerifyResult struct {
	Valid bool  `json:"isValid"`
	Err   error `json:"-"`
}

// BatchVerify verifies reqs concurrently on a pool of Options.Concurrency
// workers. Results are positional. Requests not started when ctx is done get
// ctx.Err().
func BatchVerify(ctx context.Context, reqs []VerifyRequest, opts ...secp256k1.Option) []VerifyResult {
	results := make([]VerifyResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	o := secp256k1.NewOptions(opts...)
	size := min(o.Concurrency, len(reqs))

	pool, err := ants.NewPool(size, ants.WithPreAlloc(true))
	if err != nil {
		o.Logger.Error().Err(err).Msg("failed to create verify pool, verifying sequentially")
		for i := range reqs {
			results[i] = verifyOne(ctx, reqs[i], opts)
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range reqs {
		if err := ctx.Err(); err != nil {
			results[i] = VerifyResult{Err: err}
			continue
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = verifyOne(ctx, reqs[i], opts)
		}); err != nil {
			wg.Done()
			results[i] = VerifyResult{Err: err}
		}
	}
	wg.Wait()

	return results
}

func verifyOne(ctx context.Context, req VerifyRequest, opts []secp256k1.Option) VerifyResult {
	if err := ctx.Err(); err != nil {
		return VerifyResult{Err: err}
	}
	ok, err := Verify(req.Message, req.Signature, req.PublicKey, opts...)
	return VerifyResult{Valid: ok, Err: err}
}
