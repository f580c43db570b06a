package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const KEY_BITS = 1024

func TestSignatureAndVerify(t *testing.T) {
	sk, err := GenerateKeyPair(KEY_BITS)
	require.NoError(t, err)

	message := []byte("Hello World!")
	sig, err := Sign(message, sk)
	require.NoError(t, err)
	assert.True(t, Verify(message, &sk.PublicKey, sig))
	assert.False(t, Verify([]byte("Hello World?"), &sk.PublicKey, sig))
}

func TestAddressRoundTrip(t *testing.T) {
	sk, err := GenerateKeyPair(KEY_BITS)
	require.NoError(t, err)

	addr, err := PublicKeyToAddress(&sk.PublicKey)
	require.NoError(t, err)
	pk, err := AddressToPublicKey(addr)
	require.NoError(t, err)
	assert.True(t, sk.PublicKey.Equal(pk))

	_, err = AddressToPublicKey("not base64!")
	assert.Error(t, err)
}

func TestKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.pem")
	created, err := ParseKeyFile(path, false, KEY_BITS)
	require.NoError(t, err)

	loaded, err := ParseKeyFile(path, false, KEY_BITS)
	require.NoError(t, err)
	assert.True(t, created.Equal(loaded))

	_, err = ParseKeyFile("", false, KEY_BITS)
	assert.Error(t, err)
}
