package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// listCache keeps whole list responses in redis under "<Type>List[:scope]".
// A nil client disables caching. Every mutation removes the affected list.
type listCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func getTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

func listKey[T any](scope string) string {
	if scope == "" {
		return getTypeName[T]() + "List"
	}
	return getTypeName[T]() + "List:" + scope
}

// retrieveList returns nil when the list is not cached.
func retrieveList[T any](ctx context.Context, c *listCache, scope string) []*T {
	if c == nil || c.rdb == nil {
		return nil
	}
	key := listKey[T](scope)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			config.LogError(c.logger, "sqlstore", "retrieveList", key, nil, err)
		}
		return nil
	}
	var result []*T
	if err := json.Unmarshal(raw, &result); err != nil {
		config.LogError(c.logger, "sqlstore", "retrieveList", key, nil, err)
		return nil
	}
	return result
}

func storeList[T any](ctx context.Context, c *listCache, scope string, list []*T) {
	if c == nil || c.rdb == nil {
		return
	}
	key := listKey[T](scope)
	raw, err := json.Marshal(list)
	if err != nil {
		config.LogError(c.logger, "sqlstore", "storeList", key, nil, err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		config.LogError(c.logger, "sqlstore", "storeList", key, nil, err)
	}
}

func removeList[T any](ctx context.Context, c *listCache, scope string) {
	if c == nil || c.rdb == nil {
		return
	}
	key := listKey[T](scope)
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		config.LogError(c.logger, "sqlstore", "removeList", key, nil, err)
	}
}
