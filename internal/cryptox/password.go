// Package cryptox hashes and verifies account passwords.
//
// Digests are argon2id in PHC string form:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// Salt and key are unpadded standard base64. Verify also accepts bcrypt
// digests ($2a$, $2b$, $2y$) so accounts imported from older deployments keep
// working.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	algorithmID = "argon2id"
	saltLength  = 16
	keyLength   = 32
)

// HasherConfig is the argon2id work factor. Raising any value makes new
// digests more expensive; existing digests keep the parameters they were
// created with.
type HasherConfig struct {
	MemoryKB    uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultHasherConfig matches the key-derivation cost used elsewhere in the
// project: 64 MiB, one pass, four lanes.
func DefaultHasherConfig() HasherConfig {
	return HasherConfig{MemoryKB: 64 * 1024, Iterations: 1, Parallelism: 4}
}

// Validate reports whether cfg is usable.
func (c HasherConfig) Validate() error {
	if c.MemoryKB < 8*1024 {
		return fmt.Errorf("hash memory must be >= 8192 KB: %w", common.ErrInvalidInput)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("hash iterations must be >= 1: %w", common.ErrInvalidInput)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("hash parallelism must be >= 1: %w", common.ErrInvalidInput)
	}
	return nil
}

// Hasher produces and checks password digests. It holds no mutable state and
// is safe for concurrent use.
type Hasher struct {
	cfg HasherConfig
}

func NewHasher(cfg HasherConfig) (*Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{cfg: cfg}, nil
}

// Hash returns a fresh digest of secret with a random salt, so hashing the
// same secret twice yields different digests.
func (h *Hasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("empty secret: %w", common.ErrInvalidInput)
	}

	salt := common.GenerateRandByteArray(saltLength)
	key := argon2.IDKey([]byte(secret), salt, h.cfg.Iterations, h.cfg.MemoryKB, h.cfg.Parallelism, keyLength)
	defer common.WipeByteArray(key)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.cfg.MemoryKB,
		h.cfg.Iterations,
		h.cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether secret matches digest. Any malformed digest yields
// false.
func (h *Hasher) Verify(secret, digest string) bool {
	if secret == "" || digest == "" {
		return false
	}
	if isBcrypt(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
	}

	p, err := parseDigest(digest, h.cfg.ceiling())
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(secret), p.salt, p.iterations, p.memoryKB, p.parallelism, uint32(len(p.key)))
	defer common.WipeByteArray(computed)

	return subtle.ConstantTimeCompare(computed, p.key) == 1
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}

type parsedDigest struct {
	memoryKB    uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

// Stored digests may cost at most costHeadroom times the configured work
// factor, and never less than the floor values below.
const (
	costHeadroom       = 4
	floorMemoryKB      = 64 * 1024
	floorIterations    = 4
	floorParallelism   = 16
	maxDigestKeyLength = 128
)

// ceiling is the most expensive work factor Verify will run for a digest.
func (c HasherConfig) ceiling() HasherConfig {
	return HasherConfig{
		MemoryKB:    uint32(min(max(costHeadroom*uint64(c.MemoryKB), floorMemoryKB), math.MaxUint32)),
		Iterations:  uint32(min(max(costHeadroom*uint64(c.Iterations), floorIterations), math.MaxUint32)),
		Parallelism: uint8(min(max(costHeadroom*uint64(c.Parallelism), floorParallelism), 255)),
	}
}

func parseDigest(digest string, limit HasherConfig) (*parsedDigest, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return nil, fmt.Errorf("unsupported digest format")
	}

	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, fmt.Errorf("unsupported argon2 version %q", parts[2])
	}

	var p parsedDigest
	seen := 0
	for _, kv := range strings.Split(parts[3], ",") {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("bad parameter %q", kv)
		}
		switch name {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v == 0 || v > uint64(limit.MemoryKB) {
				return nil, fmt.Errorf("bad memory parameter %q", value)
			}
			p.memoryKB = uint32(v)
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v == 0 || v > uint64(limit.Iterations) {
				return nil, fmt.Errorf("bad time parameter %q", value)
			}
			p.iterations = uint32(v)
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v == 0 || v > uint64(limit.Parallelism) {
				return nil, fmt.Errorf("bad parallelism parameter %q", value)
			}
			p.parallelism = uint8(v)
		default:
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
		seen++
	}
	if seen != 3 || p.memoryKB == 0 || p.iterations == 0 || p.parallelism == 0 {
		return nil, fmt.Errorf("missing parameters")
	}

	var err error
	if p.salt, err = decodeB64(parts[4]); err != nil || len(p.salt) == 0 {
		return nil, fmt.Errorf("bad salt")
	}
	if p.key, err = decodeB64(parts[5]); err != nil || len(p.key) == 0 || len(p.key) > maxDigestKeyLength {
		return nil, fmt.Errorf("bad key")
	}
	return &p, nil
}

// decodeB64 accepts padded and unpadded standard base64.
func decodeB64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
