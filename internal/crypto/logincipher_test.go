package crypto_test

import (
	cryptorand "crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consatan/weibo-image-uploader/internal/crypto"
	"github.com/consatan/weibo-image-uploader/internal/domain"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(cryptorand.Reader, 1024)
	require.NoError(t, err)
	return key
}

func TestEncryptCredentialRoundTrip(t *testing.T) {
	key := generateKey(t)
	modHex := key.PublicKey.N.Text(16)
	expHex := fmt.Sprintf("%x", key.PublicKey.E)

	msg := []byte("1234567890\tnonce\npassword")
	ct, err := crypto.EncryptCredential(msg, expHex, modHex)
	require.NoError(t, err)

	pt, err := rsa.DecryptPKCS1v15(nil, key, ct)
	require.NoError(t, err)
	assert.Equal(t, msg, pt)

	// The form field carries the hex encoding; make sure it survives it.
	_, err = hex.DecodeString(hex.EncodeToString(ct))
	require.NoError(t, err)
}

func TestEncryptCredentialInvalidHex(t *testing.T) {
	_, err := crypto.EncryptCredential([]byte("m"), "010001", "not-hex!")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))

	_, err = crypto.EncryptCredential([]byte("m"), "zz", "abcdef")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))
}

func TestEncryptCredentialMessageTooLong(t *testing.T) {
	key := generateKey(t)
	modHex := key.PublicKey.N.Text(16)

	long := make([]byte, 4096)
	_, err := crypto.EncryptCredential(long, "010001", modHex)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))
}
