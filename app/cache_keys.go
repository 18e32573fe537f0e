package app

import (
	"fmt"

	"keystats/domain/window"
)

// Cache key namespaces, relative to the cache layer prefix
const (
	RecentKeysNamespace    = "recent_keys"
	HighScoreKeysNamespace = "high_score_keys"
	StatisticsNamespace    = "statistics"
	UserNamespace          = "user"
)

// rangeKey renders "<namespace>:<start>:<end>" with "None" for unbounded sides
func rangeKey(namespace string, r window.Range) string {
	s, e := r.KeyParts()
	return fmt.Sprintf("%s:%s:%s", namespace, s, e)
}

// RecentKeysCacheKey is the cache key of GetRecentKeys for r
func RecentKeysCacheKey(r window.Range) string {
	return rangeKey(RecentKeysNamespace, r)
}

// HighScoreKeysCacheKey is the cache key of GetHighScoreKeys for r
func HighScoreKeysCacheKey(r window.Range) string {
	return rangeKey(HighScoreKeysNamespace, r)
}

// StatisticsCacheKey is the cache key of GetStatistics for r
func StatisticsCacheKey(r window.Range) string {
	return rangeKey(StatisticsNamespace, r)
}

// UserCacheKey is the cache key of a user profile
func UserCacheKey(username string) string {
	return UserNamespace + ":" + username
}
