package cache

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"
	"golang.org/x/sys/unix"
	_ "modernc.org/sqlite"

	"timeweave/internal/fileutil"
	"timeweave/internal/logging"
)

// ErrNotWritable reports a cache directory the process cannot use.
var ErrNotWritable = errors.New("cache directory not writable")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const lockRetryDelay = 25 * time.Millisecond

// Entry describes one stored index.
type Entry struct {
	Key        Key
	SizeBytes  int64
	Hits       int64
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Stats summarizes the cache.
type Stats struct {
	Dir     string
	Entries int
	Bytes   int64
	Hits    int64
}

// Cache is a content-addressed store of encoded indexes.
type Cache struct {
	dir    string
	db     *sql.DB
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time
}

// Open prepares dir, checks it is writable and opens the SQLite index.
func Open(dir string, logger *slog.Logger) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache: directory is empty")
	}
	for _, sub := range []string{"entries", "locks"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotWritable, dir, err)
		}
	}
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotWritable, dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("open cache index: %w", err)
	}
	// One connection keeps the per-connection pragmas in force.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	c := &Cache{
		dir:    dir,
		db:     db,
		logger: logging.NewComponentLogger(logger, "cache"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := c.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the index database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) entryPath(key Key) string {
	return filepath.Join(c.dir, "entries", string(key[:2]), string(key)+".json")
}

func (c *Cache) lockPath(key Key) string {
	return filepath.Join(c.dir, "locks", string(key)+".lock")
}

// Get returns the stored bytes for key. A miss is not an error.
func (c *Cache) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	if _, err := ParseKey(string(key)); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	c.record(ctx, key, int64(len(data)), 1)
	return data, true, nil
}

// Put stores data under key, replacing any previous entry atomically.
func (c *Cache) Put(ctx context.Context, key Key, data []byte) error {
	if _, err := ParseKey(string(key)); err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(c.entryPath(key), data, 0o644); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	c.record(ctx, key, int64(len(data)), 0)
	c.logger.Debug("cache entry stored", logging.String("key", key.Short()), logging.Int("bytes", len(data)))
	return nil
}

// record upserts the index row. The entry files are authoritative, so index
// failures are logged and otherwise ignored.
func (c *Cache) record(ctx context.Context, key Key, size int64, hits int64) {
	now := c.now().Format(timeLayout)
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO entries (key, size_bytes, hits, created_at, last_used_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET
             size_bytes = excluded.size_bytes,
             hits = entries.hits + excluded.hits,
             last_used_at = excluded.last_used_at`,
		string(key), size, hits, now, now,
	)
	if err != nil {
		logging.WarnWithContext(c.logger, "cache index update failed", "cache_index_failed",
			logging.String("key", key.Short()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "cache stats and pruning may be inaccurate"),
			logging.String(logging.FieldErrorHint, "run cache clear if the problem persists"),
		)
	}
}

type flight struct {
	data []byte
	hit  bool
}

// GetOrCompute returns the entry for key, running compute at most once when
// it is missing. The boolean reports whether the bytes came from the cache.
// Compute errors are returned and nothing is stored.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	v, err, _ := c.group.Do(string(key), func() (any, error) {
		return c.getOrCompute(ctx, key, compute)
	})
	if err != nil {
		return nil, false, err
	}
	f := v.(flight)
	return bytes.Clone(f.data), f.hit, nil
}

func (c *Cache) getOrCompute(ctx context.Context, key Key, compute func(context.Context) ([]byte, error)) (flight, error) {
	if data, ok, err := c.Get(ctx, key); err != nil {
		return flight{}, err
	} else if ok {
		return flight{data: data, hit: true}, nil
	}

	lock := flock.New(c.lockPath(key))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return flight{}, fmt.Errorf("lock cache entry: %w", err)
	}
	if !locked {
		return flight{}, fmt.Errorf("lock cache entry: %w", ctx.Err())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	// Another process may have stored the entry while we waited.
	if data, ok, err := c.Get(ctx, key); err != nil {
		return flight{}, err
	} else if ok {
		return flight{data: data, hit: true}, nil
	}

	data, err := compute(ctx)
	if err != nil {
		return flight{}, err
	}
	if err := c.Put(ctx, key, data); err != nil {
		return flight{}, err
	}
	return flight{data: data, hit: false}, nil
}

// Stats summarizes the index.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Dir: c.dir}
	row := c.db.QueryRowContext(ctx, "SELECT COUNT(1), COALESCE(SUM(size_bytes), 0), COALESCE(SUM(hits), 0) FROM entries")
	if err := row.Scan(&stats.Entries, &stats.Bytes, &stats.Hits); err != nil {
		return Stats{}, fmt.Errorf("query cache stats: %w", err)
	}
	return stats, nil
}

// Entries lists indexed entries, most recently used first.
func (c *Cache) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT key, size_bytes, hits, created_at, last_used_at FROM entries ORDER BY last_used_at DESC, key")
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                 Entry
			key               string
			created, lastUsed string
		)
		if err := rows.Scan(&key, &e.SizeBytes, &e.Hits, &created, &lastUsed); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		e.Key = Key(key)
		e.CreatedAt, _ = time.Parse(timeLayout, created)
		e.LastUsedAt, _ = time.Parse(timeLayout, lastUsed)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	return entries, nil
}

// Prune removes the least recently used entries beyond maxEntries and
// returns how many were removed.
func (c *Cache) Prune(ctx context.Context, maxEntries int) (int, error) {
	maxEntries = max(maxEntries, 0)
	rows, err := c.db.QueryContext(ctx,
		"SELECT key FROM entries ORDER BY last_used_at DESC, key LIMIT -1 OFFSET ?", maxEntries)
	if err != nil {
		return 0, fmt.Errorf("select prune candidates: %w", err)
	}
	var victims []Key
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan prune candidate: %w", err)
		}
		victims = append(victims, Key(key))
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate prune candidates: %w", err)
	}

	removed := 0
	for _, key := range victims {
		if err := c.Remove(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		c.logger.Info("cache pruned", logging.Int("removed", removed), logging.Int("kept", maxEntries))
	}
	return removed, nil
}

// Remove deletes one entry and its index row.
func (c *Cache) Remove(ctx context.Context, key Key) error {
	if _, err := ParseKey(string(key)); err != nil {
		return err
	}
	if err := os.Remove(c.entryPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache entry: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", string(key)); err != nil {
		return fmt.Errorf("delete cache index row: %w", err)
	}
	return nil
}

// Clear removes every entry, including entry files the index lost track of.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	removed, err := c.Prune(ctx, 0)
	if err != nil {
		return removed, err
	}
	orphans := 0
	root := filepath.Join(c.dir, "entries")
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		orphans++
		return nil
	})
	if err != nil {
		return removed + orphans, fmt.Errorf("clear cache entries: %w", err)
	}
	if orphans > 0 {
		c.logger.Info("removed unindexed cache entries", logging.Int("removed", orphans))
	}
	return removed + orphans, nil
}
