// Package history archives finished rounds. The registry keeps a short
// in-memory ring of recent entries; a Store, when configured, keeps a
// durable copy keyed by round sequence.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-redis/redis/v9"
)

// Entry is what gets recorded about one finished round.
type Entry struct {
	Sequence     uint64        `cbor:"1,keyasint"`
	RoundType    string        `cbor:"2,keyasint"`
	Outcome      string        `cbor:"3,keyasint"`
	Participants []int         `cbor:"4,keyasint"`
	Winners      []int         `cbor:"5,keyasint"`
	Duration     time.Duration `cbor:"6,keyasint"`
	EndedAt      time.Time     `cbor:"7,keyasint"`
}

func Encode(e Entry) ([]byte, error) {
	return cbor.Marshal(e)
}

func Decode(data []byte) (Entry, error) {
	var e Entry
	err := cbor.Unmarshal(data, &e)
	return e, err
}

var Missing = fmt.Errorf("entry missing")

// Store is a durable archive of round entries.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

// FSStore archives entries as files under a directory.
type FSStore string

func (f FSStore) getPath(key string) string {
	return filepath.Join(string(f), key)
}

func (f FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	target := f.getPath(key)
	if _, err := os.Stat(target); err != nil {
		return nil, Missing
	}
	return os.ReadFile(target)
}

func (f FSStore) Set(ctx context.Context, key string, data []byte) error {
	return os.WriteFile(f.getPath(key), data, 0644)
}

const (
	ENTRY_KEY    = "rounds-%s"
	ENTRY_EXPIRY = time.Duration(1 * time.Hour)
)

// RedisStore archives entries in Redis with an expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

func (r *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	key := fmt.Sprintf(ENTRY_KEY, id)
	data, err := r.client.Get(ctx, key).Bytes()

	if err == redis.Nil {
		return nil, Missing
	}

	if err != nil {
		return nil, err
	}

	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, id string, data []byte) error {
	key := fmt.Sprintf(ENTRY_KEY, id)
	return r.client.Set(ctx, key, data, ENTRY_EXPIRY).Err()
}
