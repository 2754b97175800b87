// Copyright (c) 2026 Pollhub. All rights reserved.

package polls

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/woolbro/pollhub/internal/platform/constants"
	"github.com/woolbro/pollhub/internal/platform/ctxutil"
)

// RedisTallyCache implements TallyCache using Redis.
//
// # Failure Mode
//
// Every operation is best effort: a Redis outage degrades reads to cache
// misses and makes writes no-ops, so poll pages keep serving from Postgres.
type RedisTallyCache struct {
	client *redis.Client
}

// NewTallyCache creates a new Redis-backed TallyCache.
func NewTallyCache(client *redis.Client) *RedisTallyCache {
	return &RedisTallyCache{client: client}
}

func tallyKey(pollID int64) string {
	return fmt.Sprintf("%s%d", constants.RedisPrefixPollTally, pollID)
}

/*
Get returns the cached tally for a poll.

Parameters:
  - context: context.Context
  - pollID: int64

Returns:
  - map[int64]int64: Vote count per choice ID
  - bool: false on a miss or any transport failure
*/
func (cache *RedisTallyCache) Get(context context.Context, pollID int64) (map[int64]int64, bool) {
	payload, err := cache.client.Get(context, tallyKey(pollID)).Bytes()
	if err != nil {
		return nil, false
	}

	tally := make(map[int64]int64)
	if err := json.Unmarshal(payload, &tally); err != nil {
		// A corrupt entry is dropped so the next read repopulates it.
		cache.client.Del(context, tallyKey(pollID))
		return nil, false
	}
	return tally, true
}

/*
Set stores a poll's tally with the given lifetime. Best effort.

Parameters:
  - context: context.Context
  - pollID: int64
  - tally: map[int64]int64
  - ttl: time.Duration
*/
func (cache *RedisTallyCache) Set(context context.Context, pollID int64, tally map[int64]int64, ttl time.Duration) {
	payload, err := json.Marshal(tally)
	if err != nil {
		return
	}

	if err := cache.client.Set(context, tallyKey(pollID), payload, ttl).Err(); err != nil {
		ctxutil.GetLogger(context).Warn("tally_cache_set_failed",
			"poll_id", pollID,
			"error", err.Error(),
		)
	}
}

/*
Invalidate drops a poll's cached tally after a vote. Best effort.

Parameters:
  - context: context.Context
  - pollID: int64
*/
func (cache *RedisTallyCache) Invalidate(context context.Context, pollID int64) {
	if err := cache.client.Del(context, tallyKey(pollID)).Err(); err != nil {
		ctxutil.GetLogger(context).Warn("tally_cache_invalidate_failed",
			"poll_id", pollID,
			"error", err.Error(),
		)
	}
}
