package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/bsm/redislock"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const lockTTL = 30 * time.Second

// Store implements models.Store on MySQL. Derived fields (credit, paid, stock)
// are updated in the same transaction as the entry or movement that changes them.
type Store struct {
	db     *gorm.DB
	cache  *listCache
	locker *redislock.Client
	logger *logrus.Logger
	now    func() time.Time
}

// New builds a Store. rdb and locker may be nil; the store then runs without cache or locks.
func New(db *gorm.DB, rdb *redis.Client, locker *redislock.Client, cacheTTL time.Duration) *Store {
	logger := config.GetLogger()
	return &Store{
		db:     db,
		cache:  &listCache{rdb: rdb, ttl: cacheTTL, logger: logger},
		locker: locker,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// withLock serializes mutations of one record across processes.
// A lock held elsewhere is reported as utils.ErrInFlight.
func (s *Store) withLock(ctx context.Context, key string, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	lock, err := s.locker.Obtain(ctx, "lock:"+key, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		config.LogError(s.logger, "sqlstore", "withLock", "could not obtain lock", key, err)
		return utils.ErrInFlight
	} else if err != nil {
		return utils.NewTransportError("obtain lock", 0, err)
	}
	defer func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}()
	return fn()
}

// wrap converts database errors to the store error taxonomy.
func wrap(op string, resource string, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFoundError(resource, id)
	}
	var ve *utils.ValidationError
	var ne *utils.NotFoundError
	if errors.As(err, &ve) || errors.As(err, &ne) || errors.Is(err, utils.ErrInFlight) {
		return err
	}
	var te *utils.TransportError
	if errors.As(err, &te) {
		return err
	}
	return utils.NewTransportError(op, 0, err)
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func lockKey(parts ...any) string {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += fmt.Sprint(p)
	}
	return key
}
