package cryptox

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(HasherConfig{MemoryKB: 8 * 1024, Iterations: 1, Parallelism: 1})
	require.NoError(t, err)
	return h
}

func TestHasher_RoundTrip(t *testing.T) {
	h := newTestHasher(t)

	digest, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=8192,t=1,p=1$"))

	assert.True(t, h.Verify("correct horse battery staple", digest))
	assert.False(t, h.Verify("correct horse battery stapler", digest))
	assert.False(t, h.Verify("", digest))
}

func TestHasher_SaltIsRandom(t *testing.T) {
	h := newTestHasher(t)

	d1, err := h.Hash("secret")
	require.NoError(t, err)
	d2, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
	assert.True(t, h.Verify("secret", d1))
	assert.True(t, h.Verify("secret", d2))
}

func TestHasher_EmptySecret(t *testing.T) {
	h := newTestHasher(t)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestHasher_VerifyUsesDigestParameters(t *testing.T) {
	weak := newTestHasher(t)
	digest, err := weak.Hash("secret")
	require.NoError(t, err)

	strong, err := NewHasher(HasherConfig{MemoryKB: 16 * 1024, Iterations: 2, Parallelism: 2})
	require.NoError(t, err)
	assert.True(t, strong.Verify("secret", digest))
}

func TestHasher_AcceptsCostWithinHeadroom(t *testing.T) {
	strong, err := NewHasher(HasherConfig{MemoryKB: 16 * 1024, Iterations: 2, Parallelism: 2})
	require.NoError(t, err)
	digest, err := strong.Hash("secret")
	require.NoError(t, err)

	assert.True(t, newTestHasher(t).Verify("secret", digest))
}

func TestHasher_RejectsExcessiveCost(t *testing.T) {
	h := newTestHasher(t)
	good, err := h.Hash("secret")
	require.NoError(t, err)
	parts := strings.Split(good, "$")
	tail := "$" + parts[4] + "$" + parts[5]

	tests := []struct {
		name   string
		params string
	}{
		{"memory above ceiling", "m=65537,t=1,p=1"},
		{"memory at uint32 max", "m=4294967295,t=1,p=1"},
		{"time above ceiling", "m=8192,t=5,p=1"},
		{"time at uint32 max", "m=8192,t=4294967295,p=1"},
		{"parallelism above ceiling", "m=8192,t=1,p=17"},
		{"parallelism at uint8 max", "m=8192,t=1,p=255"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, h.Verify("secret", "$argon2id$v=19$"+tt.params+tail))
		})
	}

	longKey := "$argon2id$v=19$m=8192,t=1,p=1$" + parts[4] + "$" + strings.Repeat("A", 4096)
	assert.False(t, h.Verify("secret", longKey))
}

func TestHasherConfig_Ceiling(t *testing.T) {
	assert.Equal(t, HasherConfig{MemoryKB: 64 * 1024, Iterations: 4, Parallelism: 16},
		HasherConfig{MemoryKB: 8 * 1024, Iterations: 1, Parallelism: 1}.ceiling())
	assert.Equal(t, HasherConfig{MemoryKB: 1024 * 1024, Iterations: 12, Parallelism: 32},
		HasherConfig{MemoryKB: 256 * 1024, Iterations: 3, Parallelism: 8}.ceiling())
	assert.Equal(t, uint8(255), HasherConfig{MemoryKB: 8 * 1024, Iterations: 1, Parallelism: 200}.ceiling().Parallelism)
	assert.Equal(t, uint32(4294967295), HasherConfig{MemoryKB: 4294967295, Iterations: 1, Parallelism: 1}.ceiling().MemoryKB)
}

func TestHasher_MalformedDigests(t *testing.T) {
	h := newTestHasher(t)
	good, err := h.Hash("secret")
	require.NoError(t, err)
	parts := strings.Split(good, "$")

	tests := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"garbage", "not-a-digest"},
		{"wrong algorithm", strings.Replace(good, "argon2id", "argon2i", 1)},
		{"wrong version", strings.Replace(good, "v=19", "v=16", 1)},
		{"missing parameter", "$argon2id$v=19$m=8192,t=1$" + parts[4] + "$" + parts[5]},
		{"unknown parameter", "$argon2id$v=19$m=8192,t=1,x=1$" + parts[4] + "$" + parts[5]},
		{"zero time", "$argon2id$v=19$m=8192,t=0,p=1$" + parts[4] + "$" + parts[5]},
		{"huge memory", "$argon2id$v=19$m=999999999,t=1,p=1$" + parts[4] + "$" + parts[5]},
		{"bad salt", "$argon2id$v=19$m=8192,t=1,p=1$!!!$" + parts[5]},
		{"bad key", "$argon2id$v=19$m=8192,t=1,p=1$" + parts[4] + "$%%%"},
		{"truncated", good[:len(good)/2]},
		{"broken bcrypt", "$2a$10$short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("secret", tt.digest))
			})
		})
	}
}

func TestHasher_VerifyBcrypt(t *testing.T) {
	h := newTestHasher(t)

	b, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, h.Verify("admin123", string(b)))
	assert.False(t, h.Verify("admin124", string(b)))
}

func TestHasherConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultHasherConfig().Validate())

	_, err := NewHasher(HasherConfig{MemoryKB: 1024, Iterations: 1, Parallelism: 1})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewHasher(HasherConfig{MemoryKB: 8192, Iterations: 0, Parallelism: 1})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewHasher(HasherConfig{MemoryKB: 8192, Iterations: 1, Parallelism: 0})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
