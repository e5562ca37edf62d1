package guardrails

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobacq/internal/core/combo"
	"jobacq/internal/platform/logger"
	"jobacq/internal/platform/store"
	"jobacq/internal/services/backfill/domain"
)

// ClaimKey is the redis key for an in-flight dispatch
func ClaimKey(provider string, k combo.Key) string {
	return "acq:claim:" + provider + ":" + k.Hash()
}

// RedisClaims claims with SET NX PX under a per process owner token, so a
// release never drops a claim another runner took after ours expired
func RedisClaims(r store.Redis, ttl time.Duration) domain.Claimer {
	if r == nil {
		return NoClaims()
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &redisClaims{r: r, ttl: ttl, owner: uuid.NewString()}
}

type redisClaims struct {
	r     store.Redis
	ttl   time.Duration
	owner string
}

func (c *redisClaims) Claim(ctx context.Context, provider string, k combo.Key) (func(), bool, error) {
	key := ClaimKey(provider, k)
	ok, err := c.r.SetNX(ctx, key, c.owner, c.ttl)
	if err != nil || !ok {
		return func() {}, false, err
	}
	return func() {
		// the run ctx may already be done; release on a short fresh budget
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if _, err := c.r.Release(rctx, key, c.owner); err != nil {
			logger.C(ctx).Debug().Err(err).Str("key", key).Msg("backfill: claim release failed; ttl will expire it")
		}
	}, true, nil
}

// NoClaims always grants; used when redis is disabled
func NoClaims() domain.Claimer { return noClaims{} }

type noClaims struct{}

func (noClaims) Claim(context.Context, string, combo.Key) (func(), bool, error) {
	return func() {}, true, nil
}
