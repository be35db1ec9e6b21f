package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	CategoriesKey      = "categories:all"
	UserKeyPrefix      = "user:%d"
	RevokedTokenPrefix = "blacklist:%s"
)

const (
	CategoriesTTL = 30 * time.Minute
	UserTTL       = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenPrefix, jti)
}

// Invalidate drops key. Missing Redis is not an error.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoriesKey)
}
