package directory

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/theirongolddev/orgburn/internal/model"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Fetcher lists organization users.
type Fetcher interface {
	ListUsers(ctx context.Context) ([]model.User, error)
}

// staleRetry bounds how long a stale snapshot is served from memory before
// the API is tried again.
const staleRetry = time.Minute

// ErrUnavailable is returned when neither the API nor a snapshot can supply users.
var ErrUnavailable = errors.New("directory: no user directory available")

// Cache serves the user directory from memory, then from the snapshot file
// while it is younger than the TTL, and otherwise fetches it once from the
// API, sharing the fetch between concurrent callers.
type Cache struct {
	fetcher Fetcher
	path    string
	ttl     time.Duration

	mu        sync.Mutex
	dir       *Directory
	expiresAt time.Time

	sf  singleflight.Group
	now func() time.Time
}

// NewCache returns a cache backed by the snapshot at path. fetcher may be nil,
// in which case only the snapshot is used.
func NewCache(fetcher Fetcher, path string, ttl time.Duration) *Cache {
	return &Cache{fetcher: fetcher, path: path, ttl: ttl, now: time.Now}
}

// Get returns the current directory. When a refresh fails, a stale snapshot
// is served instead.
func (c *Cache) Get(ctx context.Context) (*Directory, error) {
	c.mu.Lock()
	if c.dir != nil && c.now().Before(c.expiresAt) {
		d := c.dir
		c.mu.Unlock()
		return d, nil
	}
	c.mu.Unlock()

	v, err, _ := c.sf.Do("users", func() (any, error) {
		c.mu.Lock()
		if c.dir != nil && c.now().Before(c.expiresAt) {
			d := c.dir
			c.mu.Unlock()
			return d, nil
		}
		c.mu.Unlock()

		if d, modTime, err := c.loadSnapshot(); err == nil && c.now().Before(modTime.Add(c.ttl)) {
			c.store(d, modTime.Add(c.ttl))
			return d, nil
		}

		d, err := c.fetch(ctx)
		if err == nil {
			return d, nil
		}

		stale, _, snapErr := c.loadSnapshot()
		if snapErr != nil {
			return nil, errors.Join(ErrUnavailable, err)
		}
		log.WithError(err).WithField("snapshot", c.path).Warn("user directory refresh failed, using stale snapshot")
		c.store(stale, c.now().Add(min(staleRetry, c.ttl)))
		return stale, nil
	})
	if err != nil {
		return New(nil), err
	}
	return v.(*Directory), nil
}

// Refresh fetches the directory from the API and rewrites the snapshot.
func (c *Cache) Refresh(ctx context.Context) (*Directory, error) {
	v, err, _ := c.sf.Do("refresh", func() (any, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Directory), nil
}

func (c *Cache) fetch(ctx context.Context) (*Directory, error) {
	if c.fetcher == nil {
		return nil, ErrUnavailable
	}
	users, err := c.fetcher.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if c.path != "" {
		if err := SaveSnapshot(c.path, users); err != nil {
			log.WithError(err).Warn("writing user directory snapshot failed")
		}
	}
	d := New(users)
	c.store(d, c.now().Add(c.ttl))
	return d, nil
}

func (c *Cache) loadSnapshot() (*Directory, time.Time, error) {
	if c.path == "" {
		return nil, time.Time{}, os.ErrNotExist
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, time.Time{}, err
	}
	d, err := LoadSnapshot(c.path)
	if err != nil {
		return nil, time.Time{}, err
	}
	return d, info.ModTime(), nil
}

func (c *Cache) store(d *Directory, expiresAt time.Time) {
	c.mu.Lock()
	c.dir = d
	c.expiresAt = expiresAt
	c.mu.Unlock()
}
