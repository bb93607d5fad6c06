// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/rc4"
	"fmt"
	"io"
)

// EncryptionVersion represents PDF encryption version
type EncryptionVersion int

const (
	EncryptionV1 EncryptionVersion = 1 // RC4 40-bit
	EncryptionV2 EncryptionVersion = 2 // RC4 40-128-bit
	EncryptionV4 EncryptionVersion = 4 // RC4 or AES 128-bit
)

// EncryptionRevision represents PDF encryption revision
type EncryptionRevision int

const (
	Revision2 EncryptionRevision = 2 // MD5-based
	Revision3 EncryptionRevision = 3 // MD5-based with key strengthening
	Revision4 EncryptionRevision = 4 // MD5-based with access permissions
)

// EncryptionMethod represents the encryption method
type EncryptionMethod int

const (
	MethodRC4   EncryptionMethod = 0
	MethodAESV2 EncryptionMethod = 1 // AES-128 CBC
)

// PDFEncryptionInfo contains encryption parameters
type PDFEncryptionInfo struct {
	Version   EncryptionVersion
	Revision  EncryptionRevision
	Method    EncryptionMethod
	KeyLength int    // in bits
	O         []byte // Owner password hash
	U         []byte // User password hash
	P         uint32 // Permissions
	ID        []byte // Document ID
}

// CryptoEngine provides encryption/decryption functionality
type CryptoEngine struct {
	info *PDFEncryptionInfo
	key  []byte
}

// NewCryptoEngine creates a new crypto engine
func NewCryptoEngine(info *PDFEncryptionInfo) *CryptoEngine {
	return &CryptoEngine{
		info: info,
	}
}

// SetKey sets the encryption key
func (e *CryptoEngine) SetKey(key []byte) {
	e.key = make([]byte, len(key))
	copy(e.key, key)
}

// EncryptData encrypts data using the current encryption method
func (e *CryptoEngine) EncryptData(data []byte, objID, genID int) ([]byte, error) {
	if e.key == nil {
		return data, nil
	}

	key := e.computeObjectKey(objID, genID)

	switch e.info.Method {
	case MethodRC4:
		return e.encryptRC4(data, key)
	case MethodAESV2:
		return e.encryptAES(data, key)
	default:
		return data, fmt.Errorf("unsupported encryption method: %d", e.info.Method)
	}
}

// DecryptData decrypts data using the current encryption method
func (e *CryptoEngine) DecryptData(data []byte, objID, genID int) ([]byte, error) {
	if e.key == nil {
		return data, nil
	}

	key := e.computeObjectKey(objID, genID)

	switch e.info.Method {
	case MethodRC4:
		return e.decryptRC4(data, key)
	case MethodAESV2:
		return e.decryptAES(data, key)
	default:
		return data, fmt.Errorf("unsupported encryption method: %d", e.info.Method)
	}
}

// computeObjectKey computes the object-specific encryption key
func (e *CryptoEngine) computeObjectKey(objID, genID int) []byte {
	h := md5.New()
	h.Write(e.key)
	h.Write([]byte{byte(objID), byte(objID >> 8), byte(objID >> 16)})
	h.Write([]byte{byte(genID), byte(genID >> 8)})

	if e.info.Method == MethodAESV2 {
		h.Write([]byte("sAlT"))
	}

	hash := h.Sum(nil)
	keyLen := len(e.key) + 5
	if keyLen > 16 {
		keyLen = 16
	}
	return hash[:keyLen]
}

// encryptRC4 encrypts data using RC4
func (e *CryptoEngine) encryptRC4(data, key []byte) ([]byte, error) {
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, err
	}

	result := make([]byte, len(data))
	c.XORKeyStream(result, data)
	return result, nil
}

// decryptRC4 decrypts data using RC4
func (e *CryptoEngine) decryptRC4(data, key []byte) ([]byte, error) {
	return e.encryptRC4(data, key) // RC4 is symmetric
}

// encryptAES encrypts data using AES-CBC
func (e *CryptoEngine) encryptAES(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	// Generate random IV
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}

	// Pad data to block size
	padded := e.padPKCS7(data, aes.BlockSize)

	// Encrypt
	mode := cipher.NewCBCEncrypter(block, iv)
	ciphertext := make([]byte, len(padded))
	mode.CryptBlocks(ciphertext, padded)

	// Prepend IV
	result := make([]byte, len(iv)+len(ciphertext))
	copy(result, iv)
	copy(result[len(iv):], ciphertext)

	return result, nil
}

// decryptAES decrypts data using AES-CBC
func (e *CryptoEngine) decryptAES(data, key []byte) ([]byte, error) {
	if len(data) < aes.BlockSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := data[:aes.BlockSize]
	ciphertext := data[aes.BlockSize:]

	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext is not a multiple of the block size")
	}

	mode := cipher.NewCBCDecrypter(block, iv)
	plaintext := make([]byte, len(ciphertext))
	mode.CryptBlocks(plaintext, ciphertext)

	// Remove padding
	plaintext, err = e.unpadPKCS7(plaintext)
	if err != nil {
		return nil, err
	}

	return plaintext, nil
}

// padPKCS7 pads data using PKCS#7
func (e *CryptoEngine) padPKCS7(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padtext := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(data, padtext...)
}

// unpadPKCS7 removes PKCS#7 padding
func (e *CryptoEngine) unpadPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data")
	}

	padding := int(data[len(data)-1])
	if padding > len(data) || padding > aes.BlockSize {
		return nil, fmt.Errorf("invalid padding")
	}

	for i := len(data) - padding; i < len(data); i++ {
		if data[i] != byte(padding) {
			return nil, fmt.Errorf("invalid padding")
		}
	}

	return data[:len(data)-padding], nil
}

