package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/jobportal/internal/auth/domain"
	"github.com/wyfcoding/jobportal/pkg/cache"
)

const (
	sessionPrefix     = "auth:session:"
	userSessionPrefix = "auth:user_sessions:"
)

type sessionRedisRepository struct {
	cache *cache.RedisCache
}

// NewSessionRedisRepository 创建会话仓储。每个用户维护一个令牌集合，用于批量注销
func NewSessionRedisRepository(c *cache.RedisCache) domain.SessionRepository {
	return &sessionRedisRepository{cache: c}
}

func sessionKey(token string) string {
	return sessionPrefix + token
}

func userSessionsKey(userID uint) string {
	return fmt.Sprintf("%s%d", userSessionPrefix, userID)
}

func (r *sessionRedisRepository) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	if err := r.cache.SetJSON(ctx, sessionKey(session.Token), session, ttl); err != nil {
		return err
	}
	return r.cache.SAdd(ctx, userSessionsKey(session.UserID), ttl, session.Token)
}

func (r *sessionRedisRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	err := r.cache.GetJSON(ctx, sessionKey(token), &session)
	if errors.Is(err, cache.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRedisRepository) Delete(ctx context.Context, token string) error {
	session, err := r.Get(ctx, token)
	if err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, sessionKey(token)); err != nil {
		return err
	}
	if session != nil {
		return r.cache.SRem(ctx, userSessionsKey(session.UserID), token)
	}
	return nil
}

func (r *sessionRedisRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	key := userSessionsKey(userID)
	tokens, err := r.cache.SMembers(ctx, key)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKey(t))
	}
	keys = append(keys, key)
	return r.cache.Delete(ctx, keys...)
}
