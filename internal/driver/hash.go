package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"cscpp/internal/syntax"
)

// Digest is a SHA-256 cache key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports an unset digest.
func (d Digest) IsZero() bool { return d == Digest{} }

// CacheKey hashes the archived tree together with every flag that changes the
// rendered text. A Fallback counts only by presence.
func CacheKey(tree *syntax.Tree, flags Flags) (Digest, error) {
	data, err := syntax.Encode(tree)
	if err != nil {
		return Digest{}, fmt.Errorf("cache key: %w", err)
	}
	return combineDigest(sha256.Sum256(data), Digest(sha256.Sum256([]byte(flags.fingerprint())))), nil
}

// combineDigest: H(content || part1 || part2 ...), parts in a fixed order.
func combineDigest(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write(p[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (f Flags) fingerprint() string {
	entry := "auto"
	if f.Entry != nil {
		entry = f.Entry.String()
	}
	o := f.Options
	return fmt.Sprintf("v%d gen=%t device=%t entry=%s skip=%t scoped=%t compact=%t crlf=%t depth=%d using=%t fallback=%t",
		cacheSchemaVersion, f.GenerateOutput, f.DeviceProfile, entry, f.SkipEntry, f.MethodScopedVariables,
		o.Compact, o.CRLF, o.MaxDepth, o.UsingNamespace, o.Fallback != nil)
}
