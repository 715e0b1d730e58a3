package session

import (
	"context"
	"errors"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

const (
	hintLastAddress   = "last_address"
	hintAuthenticated = "authenticated"
)

type hintStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionHintKey(name string) string
}

func hintKeys(store hintStore, address string) (string, string) {
	address = strings.ToLower(address)
	return store.SessionHintKey(hintLastAddress + ":" + address),
		store.SessionHintKey(hintAuthenticated + ":" + address)
}

func writeHints(ctx context.Context, store hintStore, address string, ttl time.Duration) error {
	lastKey, authKey := hintKeys(store, address)
	if err := store.Set(ctx, lastKey, strings.ToLower(address), ttl); err != nil {
		return err
	}
	return store.Set(ctx, authKey, "1", ttl)
}

func readHints(ctx context.Context, store hintStore, address string) (*Hints, error) {
	lastKey, authKey := hintKeys(store, address)
	last, err := store.Get(ctx, lastKey)
	if err != nil && !errors.Is(err, redislib.Nil) {
		return nil, err
	}
	auth, err := store.Get(ctx, authKey)
	if err != nil && !errors.Is(err, redislib.Nil) {
		return nil, err
	}
	return &Hints{
		LastWalletAddress: last,
		Authenticated:     auth == "1",
	}, nil
}

func clearHints(ctx context.Context, store hintStore, address string) error {
	lastKey, authKey := hintKeys(store, address)
	return store.Del(ctx, lastKey, authKey)
}
