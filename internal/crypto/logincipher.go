package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"math/big"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// EncryptCredential encrypts message under the RSA public key the login
// handshake supplied as hex modulus/exponent strings, using PKCS#1 v1.5
// padding. It returns raw ciphertext bytes; the caller hex-encodes them for
// the form field.
func EncryptCredential(message []byte, exponentHex, modulusHex string) ([]byte, error) {
	n, ok := new(big.Int).SetString(modulusHex, 16)
	if !ok {
		return nil, domain.NewError(domain.CodeInvalidInput, "rsa modulus is not valid hex")
	}
	e, ok := new(big.Int).SetString(exponentHex, 16)
	if !ok || !e.IsInt64() {
		return nil, domain.NewError(domain.CodeInvalidInput, "rsa exponent is not valid hex")
	}

	pub := &rsa.PublicKey{N: n, E: int(e.Int64())}
	ct, err := rsa.EncryptPKCS1v15(rand.Reader, pub, message)
	if err != nil {
		if errors.Is(err, rsa.ErrMessageTooLong) {
			return nil, domain.WrapError(domain.CodeInvalidInput, "message exceeds rsa block capacity", err)
		}
		return nil, domain.WrapError(domain.CodeInvalidInput, "rsa encryption failed", err)
	}
	return ct, nil
}
