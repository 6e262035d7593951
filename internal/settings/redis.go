package settings

import (
	"context"
	"fmt"

	"cargahub/messaging-service/internal/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository stores settings under "<prefix>:<key>".
func NewRedisRepository(client *redis.Client, prefix string) Repository {
	return &redisRepository{client: client, prefix: prefix}
}

func (r *redisRepository) key(userID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, Key(userID))
}

func (r *redisRepository) Load(ctx context.Context, userID string) (models.NotificationSettings, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.DefaultNotificationSettings(), nil
	}
	if err != nil {
		return models.NotificationSettings{}, errors.Wrap(err, "unable to load notification settings")
	}
	return decode(data)
}

func (r *redisRepository) Save(ctx context.Context, userID string, s models.NotificationSettings) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(userID), data, 0).Err(); err != nil {
		return errors.Wrap(err, "unable to save notification settings")
	}
	return nil
}
