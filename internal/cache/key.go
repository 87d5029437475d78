package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Key identifies one cache entry. It is a lower-case hex SHA-256.
type Key string

var keyPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NewKey hashes parts into a key. Each part is length prefixed so ("ab", "c")
// and ("a", "bc") never collide.
func NewKey(parts ...string) Key {
	h := sha256.New()
	var size [8]byte
	for _, part := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(part)))
		h.Write(size[:])
		h.Write([]byte(part))
	}
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// ParseKey validates a key read from user input or the index.
func ParseKey(value string) (Key, error) {
	if !keyPattern.MatchString(value) {
		return "", fmt.Errorf("cache: malformed key %q", value)
	}
	return Key(value), nil
}

// Short returns the first 12 characters for display.
func (k Key) Short() string {
	if len(k) <= 12 {
		return string(k)
	}
	return string(k[:12])
}
