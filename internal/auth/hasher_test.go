package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDigest = "437db65ce092a53c1c2adaa3bb8166307bc6138a"

func TestAlgorithmHexDigest(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		want string
	}{
		{SHA1, "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{SHA256, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{SHA3_256, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
		{BLAKE2b256, "bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319"},
	}
	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.alg.HexDigest("abc"))
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm(" SHA3-256 ")
	require.NoError(t, err)
	assert.Equal(t, SHA3_256, alg)

	_, err = ParseAlgorithm("md5")
	assert.Error(t, err)
}

func TestClientDigest(t *testing.T) {
	assert.Equal(t, sampleDigest, ClientDigest(" Someone@Example.com", "secret"))
	assert.True(t, ValidClientDigest(ClientDigest("a@b.com", "x")))
}

func TestHasherDeterministic(t *testing.T) {
	for _, alg := range []Algorithm{SHA1, SHA256, SHA3_256, BLAKE2b256} {
		h := NewHasher(alg)
		assert.Equal(t, h.RegisterHash("u1", sampleDigest), h.RegisterHash("u1", sampleDigest))
		assert.Equal(t, h.RegisterHash("u1", sampleDigest), h.DeriveLoginHash("u1", sampleDigest))
	}
}

func TestHasherSaltsWithUserID(t *testing.T) {
	h := NewHasher(SHA1)
	assert.NotEqual(t, h.RegisterHash("u1", sampleDigest), h.RegisterHash("u2", sampleDigest))
	assert.NotEqual(t, h.RegisterHash("u1", sampleDigest), h.RegisterHash("u1", ClientDigest("a@b.com", "other")))
	assert.Equal(t, SHA1.HexDigest("u1:"+sampleDigest), h.RegisterHash("u1", sampleDigest))
}

func TestHasherVerify(t *testing.T) {
	h := NewHasher(SHA256)
	stored := h.RegisterHash("u1", sampleDigest)

	assert.True(t, h.Verify(stored, "u1", sampleDigest))
	assert.False(t, h.Verify(stored, "u2", sampleDigest))
	assert.False(t, h.Verify(stored, "u1", ClientDigest("a@b.com", "wrong")))
	assert.False(t, h.Verify("", "u1", sampleDigest))
}

func TestValidClientDigest(t *testing.T) {
	assert.True(t, ValidClientDigest(sampleDigest))
	assert.False(t, ValidClientDigest(""))
	assert.False(t, ValidClientDigest("437DB65CE092A53C1C2ADAA3BB8166307BC6138A"))
	assert.False(t, ValidClientDigest(sampleDigest+"0"))
	assert.False(t, ValidClientDigest("plain-password"))
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@example.com", "first.last@mail.example.co.jp", "x_y-z@host-1.io"}
	invalid := []string{"", "no-at-sign", "a@localhost", "A@EXAMPLE.COM", "a b@example.com", "a@b.c.d.e.f.g"}

	for _, email := range valid {
		assert.True(t, ValidEmail(email), email)
	}
	for _, email := range invalid {
		assert.False(t, ValidEmail(email), email)
	}
	assert.True(t, ValidEmail(NormalizeEmail("  A@EXAMPLE.COM ")))
}
