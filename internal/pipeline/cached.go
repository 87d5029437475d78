package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"timeweave/internal/cache"
	"timeweave/internal/logging"
	"timeweave/internal/temporal"
)

// CacheKey identifies the index Run would produce for in.
func (p *Pipeline) CacheKey(in Input) cache.Key {
	return cache.NewKey(in.Text, in.Engine, p.fingerprint, rawDigest(in.Raw))
}

// RunCached serves the index from c when an identical run was stored before,
// otherwise runs the pipeline and stores the result. The boolean reports a
// cache hit. A nil cache runs the pipeline directly.
func (p *Pipeline) RunCached(ctx context.Context, c *cache.Cache, in Input) (*temporal.Index, bool, error) {
	if c == nil {
		index, err := p.Run(ctx, in)
		return index, false, err
	}
	key := p.CacheKey(in)
	data, hit, err := c.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, error) {
		index, err := p.Run(ctx, in)
		if err != nil {
			return nil, err
		}
		index.RunID = ""
		return json.Marshal(index)
	})
	if err != nil {
		return nil, false, err
	}
	var index temporal.Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, false, fmt.Errorf("decode cached index: %w", err)
	}
	index.RunID = in.ID
	p.logger.Debug("cache lookup",
		logging.String("key", key.Short()),
		logging.Bool("cache_hit", hit),
		logging.String(logging.FieldEngine, in.Engine),
	)
	return &index, hit, nil
}

// rawDigest hashes the recognizer tokens with full float precision.
func rawDigest(raw []temporal.RawToken) string {
	h := sha256.New()
	buf := make([]byte, 0, 64)
	for _, r := range raw {
		buf = buf[:0]
		buf = strconv.AppendQuote(buf, r.Text)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, r.TimeStart, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, r.TimeEnd, 'g', -1, 64)
		buf = append(buf, '\n')
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}
