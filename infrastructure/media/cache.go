package media

import (
	"context"

	"boardcore/application/ports"
)

// urlCacheTTLSeconds bounds how long a resolved URL is reused. Registry
// rows can be repointed at new storage paths, so entries expire.
const urlCacheTTLSeconds = 300

// CachingStorage wraps a BlobStorage with a short-lived URL cache so
// repeated hydration of the same file skips the registry lookup.
type CachingStorage struct {
	inner ports.BlobStorage
	cache ports.Cache
}

// NewCachingStorage decorates storage with cache. A nil cache returns
// the inner storage unchanged.
func NewCachingStorage(inner ports.BlobStorage, cache ports.Cache) ports.BlobStorage {
	if cache == nil {
		return inner
	}
	return &CachingStorage{inner: inner, cache: cache}
}

func (s *CachingStorage) ResolveURL(ctx context.Context, fileID string) (string, error) {
	key := "media:url:" + fileID
	if cached, ok := s.cache.Get(ctx, key); ok {
		if url, ok := cached.(string); ok {
			return url, nil
		}
	}

	url, err := s.inner.ResolveURL(ctx, fileID)
	if err != nil {
		return "", err
	}

	// Best effort; resolution already succeeded.
	_ = s.cache.Set(ctx, key, url, urlCacheTTLSeconds)
	return url, nil
}

func (s *CachingStorage) Delete(ctx context.Context, fileID string) error {
	if err := s.inner.Delete(ctx, fileID); err != nil {
		return err
	}
	return s.cache.Delete(ctx, "media:url:"+fileID)
}
