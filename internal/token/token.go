// Package token encrypts and decrypts the opaque tokens embedded in
// verification links. Tokens are AES-CBC over the username with a
// random IV, encoded URL-safe.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/dense-analysis/tradewarp/internal/apperror"
)

type Codec struct {
	key []byte
}

// NewCodec derives a 256-bit key from the configured secret.
func NewCodec(secret string) *Codec {
	sum := sha256.Sum256([]byte(secret))

	return &Codec{key: sum[:]}
}

func pad(data []byte) []byte {
	padding := aes.BlockSize - len(data)%aes.BlockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)

	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}

	return padded
}

func unpad(data []byte) ([]byte, bool) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, false
	}

	padding := int(data[len(data)-1])

	if padding == 0 || padding > aes.BlockSize || padding > len(data) {
		return nil, false
	}

	for _, value := range data[len(data)-padding:] {
		if int(value) != padding {
			return nil, false
		}
	}

	return data[:len(data)-padding], true
}

// Encrypt produces a URL-safe token for the given value.
func (codec *Codec) Encrypt(value string) (string, error) {
	block, err := aes.NewCipher(codec.key)

	if err != nil {
		return "", err
	}

	padded := pad([]byte(value))
	output := make([]byte, aes.BlockSize+len(padded))
	iv := output[:aes.BlockSize]

	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(output[aes.BlockSize:], padded)

	return base64.RawURLEncoding.EncodeToString(output), nil
}

// Decrypt recovers the value from a token. Every way a token can be
// wrong comes back as the same validation error, so a tampered link
// leaks nothing.
func (codec *Codec) Decrypt(tokenString string) (string, error) {
	invalid := apperror.Validation("invalid verification token")
	data, err := base64.RawURLEncoding.DecodeString(tokenString)

	if err != nil || len(data) < aes.BlockSize*2 || len(data)%aes.BlockSize != 0 {
		return "", invalid
	}

	block, err := aes.NewCipher(codec.key)

	if err != nil {
		return "", err
	}

	iv := data[:aes.BlockSize]
	ciphertext := data[aes.BlockSize:]
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, ok := unpad(plaintext)

	if !ok {
		return "", invalid
	}

	return string(unpadded), nil
}
