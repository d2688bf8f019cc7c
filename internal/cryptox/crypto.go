// Package cryptox seals backup snapshots with a passphrase.
//
// A sealed blob is laid out as
//
//	magic(4) | salt(16) | nonce(12) | AES-256-GCM ciphertext
//
// The key is derived from the passphrase and salt with argon2id. The magic
// bytes are authenticated as additional data.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

var magic = []byte("KKB1")

var (
	ErrEmptyPassphrase = errors.New("passphrase is empty")
	ErrMalformed       = errors.New("sealed data is malformed")
	ErrDecrypt         = errors.New("wrong passphrase or corrupted data")
)

// DeriveKey stretches passphrase into a 256-bit key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext under passphrase. Every call uses a fresh salt
// and nonce.
func Seal(passphrase, plaintext []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}

	header := make([]byte, len(magic)+saltSize+nonceSize)
	copy(header, magic)
	salt := header[len(magic) : len(magic)+saltSize]
	nonce := header[len(magic)+saltSize:]

	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	aead, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	return aead.Seal(header, nonce, plaintext, magic), nil
}

// Open reverses Seal.
func Open(passphrase, sealed []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	if len(sealed) < len(magic)+saltSize+nonceSize || !bytes.Equal(sealed[:len(magic)], magic) {
		return nil, ErrMalformed
	}

	salt := sealed[len(magic) : len(magic)+saltSize]
	nonce := sealed[len(magic)+saltSize : len(magic)+saltSize+nonceSize]
	ciphertext := sealed[len(magic)+saltSize+nonceSize:]

	aead, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, magic)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
