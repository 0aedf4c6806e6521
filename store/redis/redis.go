package redis

import (
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "auth"

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}

func backendError(operation string, err error) error {
	return oops.Code("REDIS_BACKEND_FAILED").With("operation", operation).Wrap(err)
}

// Client is the subset of goredis.UniversalClient these stores use.
type Client = goredis.UniversalClient
