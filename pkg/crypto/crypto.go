package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
)

// Vault encrypts and decrypts OAuth tokens before they touch the database.
// It uses AES-256-CBC with a process-wide key and IV loaded from
// configuration, hex-encoding the ciphertext. Error messages never contain
// token material.
type Vault struct {
	key []byte
	iv  []byte
}

var (
	ErrInvalidKeySize      = errors.New("crypto: encryption key must be 32 bytes")
	ErrInvalidIVSize       = errors.New("crypto: IV must be 16 bytes")
	ErrMalformedCiphertext = errors.New("crypto: malformed ciphertext")
	ErrBadPadding          = errors.New("crypto: bad padding")
)

// NewVault validates the configured key and IV and returns a ready vault.
func NewVault(key, iv string) (*Vault, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKeySize
	}
	if len(iv) != aes.BlockSize {
		return nil, ErrInvalidIVSize
	}
	return &Vault{key: []byte(key), iv: []byte(iv)}, nil
}

// Encrypt returns the hex-encoded AES-256-CBC ciphertext of plaintext.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("crypto: creating cipher: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, v.iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. It fails with ErrMalformedCiphertext when the
// input is not valid hex or not block-aligned, and ErrBadPadding when the
// decrypted padding is inconsistent (wrong key or corrupt data).
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrMalformedCiphertext
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("crypto: creating cipher: %w", err)
	}

	plaintext := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, v.iv).CryptBlocks(plaintext, raw)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, ErrBadPadding
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrBadPadding
		}
	}
	return data[:len(data)-padding], nil
}
