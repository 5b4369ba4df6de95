package cartstore

import (
	"context"
	"encoding/json"
	"fmt"

	"agora/internal/domain/cart"
	"agora/internal/infra"
	"agora/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cart:"

// RedisCartStore reads and writes the cart service's keyspace. Carts
// live as JSON blobs under cart:<userID>.
type RedisCartStore struct {
	client *redis.Client
}

func NewClient(cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{client: client}
}

func (s *RedisCartStore) Get(ctx context.Context, userID uuid.UUID) (cart.Cart, error) {
	raw, err := s.client.Get(ctx, keyPrefix+userID.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return cart.Cart{}, infra.NewRepoErr("cart not found", infra.KindNotFound)
		}
		return cart.Cart{}, infra.WrapRepoErr("failed to get cart", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return cart.Cart{}, infra.WrapRepoErr("failed to decode cart", err)
	}
	return c, nil
}

func (s *RedisCartStore) Save(ctx context.Context, c cart.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return infra.WrapRepoErr("failed to encode cart", err)
	}
	if err := s.client.Set(ctx, keyPrefix+c.UserID.String(), raw, 0).Err(); err != nil {
		return infra.WrapRepoErr("failed to save cart", err)
	}
	return nil
}

func (s *RedisCartStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, keyPrefix+userID.String()).Err(); err != nil {
		return infra.WrapRepoErr("failed to clear cart", err)
	}
	return nil
}
