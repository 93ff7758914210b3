package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrCacheClosed = errors.New("cache: closed")

// levelEntry is the on-disk record. Value holds the msgpack-encoded payload.
type levelEntry struct {
	Value    []byte `msgpack:"v"`
	ExpireAt int64  `msgpack:"e"` // unix nanoseconds
}

// LevelCache implements Service on a LevelDB file so cached values survive
// restarts. Expired entries are dropped when read.
type LevelCache struct {
	db     *leveldb.DB
	mu     sync.RWMutex
	prefix []byte
	now    func() time.Time
	closed bool
}

// NewLevelCache opens or creates a LevelDB cache at path.
func NewLevelCache(path string, opts ...LevelOption) (*LevelCache, error) {
	cfg := &LevelConfig{Prefix: "cache", Now: time.Now}
	for _, o := range opts {
		o(cfg)
	}

	db, err := leveldb.OpenFile(path, &opt.Options{
		Compression: opt.SnappyCompression,
	})
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}

	return &LevelCache{
		db:     db,
		prefix: []byte(cfg.Prefix + ":"),
		now:    cfg.Now,
	}, nil
}

func (lc *LevelCache) key(k string) []byte {
	return append(append([]byte{}, lc.prefix...), k...)
}

func (lc *LevelCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	data, err := msgpack.Marshal(&levelEntry{
		Value:    payload,
		ExpireAt: expiry(lc.now(), expiration).UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("encode entry %q: %w", key, err)
	}

	lc.mu.RLock()
	defer lc.mu.RUnlock()
	if lc.closed {
		return ErrCacheClosed
	}
	return lc.db.Put(lc.key(key), data, nil)
}

func (lc *LevelCache) Get(_ context.Context, key string, dest interface{}) error {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	if lc.closed {
		return ErrCacheClosed
	}

	k := lc.key(key)
	data, err := lc.db.Get(k, nil)
	if err == leveldb.ErrNotFound {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("leveldb get: %w", err)
	}

	var entry levelEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		_ = lc.db.Delete(k, nil)
		return ErrCacheMiss
	}
	if lc.now().UnixNano() > entry.ExpireAt {
		_ = lc.db.Delete(k, nil)
		return ErrCacheMiss
	}
	return msgpack.Unmarshal(entry.Value, dest)
}

func (lc *LevelCache) Delete(_ context.Context, keys ...string) error {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	if lc.closed {
		return ErrCacheClosed
	}

	batch := new(leveldb.Batch)
	for _, k := range keys {
		batch.Delete(lc.key(k))
	}
	return lc.db.Write(batch, nil)
}

// Clear deletes every key under the cache prefix in one batch.
func (lc *LevelCache) Clear(_ context.Context) (int, error) {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	if lc.closed {
		return 0, ErrCacheClosed
	}

	iter := lc.db.NewIterator(util.BytesPrefix(lc.prefix), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte{}, iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("leveldb iterate: %w", err)
	}
	if err := lc.db.Write(batch, nil); err != nil {
		return 0, fmt.Errorf("leveldb write: %w", err)
	}
	return batch.Len(), nil
}

func (lc *LevelCache) Close() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.closed {
		return ErrCacheClosed
	}
	lc.closed = true
	return lc.db.Close()
}
