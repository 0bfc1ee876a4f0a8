package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blogicum/internal/models"

	"github.com/redis/go-redis/v9"
)

// PostTTL — срок жизни записи о посте в кеше.
const PostTTL = 5 * time.Minute

// RedisCache — cache-aside для "сырой" записи поста (детальная страница).
// Кешируется только строка БД; решение о видимости для конкретного зрителя
// принимается после чтения, поэтому кеш не раскрывает скрытые посты.
// Нулевой *RedisCache безопасен: все операции становятся no-op.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

// New подключается к Redis по адресу addr. Пустой адрес означает
// отключенный кеш: возвращается nil, и все операции проходят мимо.
func New(addr string) (*RedisCache, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	c := &RedisCache{client: client, ctx: context.Background()}
	if err := c.client.Ping(c.ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return c, nil
}

// GetPost достает пост из кеша. (nil, nil) означает промах.
func (c *RedisCache) GetPost(postID int) (*models.Post, error) {
	if c == nil {
		return nil, nil
	}
	cacheKey := fmt.Sprintf("post:%d", postID)

	data, err := c.client.Get(c.ctx, cacheKey).Result()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var post models.Post
	if err := json.Unmarshal([]byte(data), &post); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	return &post, nil
}

// SetPost кладет пост в кеш на PostTTL.
func (c *RedisCache) SetPost(post *models.Post) error {
	if c == nil {
		return nil
	}
	cacheKey := fmt.Sprintf("post:%d", post.ID)

	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	if err := c.client.Set(c.ctx, cacheKey, data, PostTTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// InvalidatePost удаляет пост из кеша после изменения или удаления.
func (c *RedisCache) InvalidatePost(postID int) error {
	if c == nil {
		return nil
	}
	cacheKey := fmt.Sprintf("post:%d", postID)

	if err := c.client.Del(c.ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	return nil
}
