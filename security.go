// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Write side of the Standard security handler. The read side
// (crypto.go: CryptoEngine, initEncrypt in read.go) already
// implements V2/R2 RC4-40, V2/R3 RC4-128, and V4/R4 AES-128 unlock; this
// file implements the matching lock path: password padding, owner-key and
// file-key derivation, and the stored user key, so that a document
// encrypted here can be opened again by the reader (and, for the user
// password case, by any Standard-handler-conformant reader).
package pdf

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/rc4"
	"math"
	mathrand "math/rand"
)

// Permissions is the P bitfield of the Standard security handler,
// matching ISO 32000-1 Table 22. Bits not listed here are reserved;
// reservedP sets them as that table lays out.
type Permissions uint32

const (
	PermPrint          Permissions = 1 << 2
	PermModify         Permissions = 1 << 3
	PermCopy           Permissions = 1 << 4
	PermAnnotate       Permissions = 1 << 5
	PermFillForms      Permissions = 1 << 8
	PermExtractAccess  Permissions = 1 << 9
	PermAssemble       Permissions = 1 << 10
	PermHighResPrint   Permissions = 1 << 11
)

// reservedP packs perms into the 32-bit P value: named permission bits
// from perms, reserved bits 7-8 and 13-32 set to 1, reserved bits 1-2
// left zero (ISO 32000 Table 22, 1-based bit positions).
func reservedP(perms Permissions) uint32 {
	const reservedOnes = 0xFFFFF0C0
	return reservedOnes | uint32(perms)
}

// securityWriter holds the derived file key and cipher choice used to
// encrypt every object written after Document.Encrypt is called.
type securityWriter struct {
	v, r      int
	keyLenBit int
	useAES    bool
	fileKey   []byte
	O, U      string
	P         uint32
	engine    *CryptoEngine
}

// randomBytes draws n cryptographically strong random bytes from the OS
// CSPRNG, falling back to a self-seeded PRNG only if the OS source
// errors -- a condition that in practice only occurs if
// /dev/urandom (or the platform equivalent) is unavailable.
func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err == nil {
		return b
	}
	seed := int64(math.Float64bits(float64(n)) ^ 0x9E3779B97F4A7C15)
	src := mathrand.New(mathrand.NewSource(seed))
	src.Read(b)
	return b
}

// padPassword appends the 32-byte standard pad string to the password
// and truncates to 32 bytes.
func padPassword(pw string) []byte {
	b := toLatin1(pw)
	out := make([]byte, 32)
	if len(b) >= 32 {
		copy(out, b[:32])
		return out
	}
	copy(out, b)
	copy(out[len(b):], passwordPad[:32-len(b)])
	return out
}

// rc4Rounds20 runs RC4 over buf with key, then (for R>=3) 19 more rounds
// with key XORed against an incrementing byte 1..19, the "20 rounds
// total" construction used for both owner-key derivation
// and the stored user key (R>=3 case).
func rc4Rounds20(key, buf []byte, r int) []byte {
	out := make([]byte, len(buf))
	copy(out, buf)
	c, _ := rc4.NewCipher(key)
	c.XORKeyStream(out, out)
	if r < 3 {
		return out
	}
	for i := 1; i <= 19; i++ {
		k := make([]byte, len(key))
		copy(k, key)
		for j := range k {
			k[j] ^= byte(i)
		}
		c, _ = rc4.NewCipher(k)
		c.XORKeyStream(out, out)
	}
	return out
}

// deriveOwnerKey computes the /O entry (ISO 32000 Algorithm 3).
func deriveOwnerKey(ownerPw, userPw string, r, keyLenBytes int) string {
	padded := padPassword(ownerPw)
	h := md5.Sum(padded)
	k := h[:]
	if r >= 3 {
		for i := 0; i < 50; i++ {
			h2 := md5.Sum(k)
			k = h2[:]
		}
	}
	k = k[:keyLenBytes]
	paddedUser := padPassword(userPw)
	return string(rc4Rounds20(k, paddedUser, r))
}

// deriveFileKey computes the file encryption key (ISO 32000 Algorithm 2).
func deriveFileKey(userPw, ownerKey string, p uint32, fileID string, r, keyLenBytes int) []byte {
	h := md5.New()
	h.Write(padPassword(userPw))
	h.Write([]byte(ownerKey))
	h.Write([]byte{byte(p), byte(p >> 8), byte(p >> 16), byte(p >> 24)})
	h.Write([]byte(fileID))
	key := h.Sum(nil)
	if r >= 3 {
		for i := 0; i < 50; i++ {
			key = md5Sum(key[:keyLenBytes])
		}
	}
	return key[:keyLenBytes]
}

func md5Sum(b []byte) []byte {
	h := md5.Sum(b)
	return h[:]
}

// deriveStoredUserKey computes the /U entry (ISO 32000 Algorithms 4 and 5).
func deriveStoredUserKey(fileKey []byte, fileID string, r int) string {
	if r == 2 {
		return string(rc4Rounds20(fileKey, passwordPad, r))
	}
	h := md5.New()
	h.Write(passwordPad)
	h.Write([]byte(fileID))
	digest := h.Sum(nil)
	padded := make([]byte, 32)
	copy(padded, digest)
	return string(rc4Rounds20(fileKey, padded, r))
}

// Encrypt locks the document with the Standard security handler. It must
// be called before any object is added; setting permissions after
// objects exist is rejected.
func (d *Document) Encrypt(ownerPwd, userPwd string, perms Permissions, useAES bool) error {
	if len(d.objects) > 0 {
		return ErrPermissionsSet
	}
	if d.fileID[0] == "" {
		d.fileID[0] = string(randomBytes(16))
		d.fileID[1] = d.fileID[0]
	}
	r, v, keyLenBytes := 3, 2, 16
	if useAES {
		r, v = 4, 4
	}
	p := reservedP(perms)
	ownerKey := deriveOwnerKey(ownerPwd, userPwd, r, keyLenBytes)
	fileKey := deriveFileKey(userPwd, ownerKey, p, d.fileID[0], r, keyLenBytes)
	userKey := deriveStoredUserKey(fileKey, d.fileID[0], r)

	method := MethodRC4
	if useAES {
		method = MethodAESV2
	}
	sec := &securityWriter{
		v: v, r: r, keyLenBit: keyLenBytes * 8, useAES: useAES,
		fileKey: fileKey, O: ownerKey, U: userKey, P: p,
		engine: NewCryptoEngine(&PDFEncryptionInfo{
			Version: EncryptionVersion(v), Revision: EncryptionRevision(r),
			Method: method, KeyLength: keyLenBytes * 8, P: p,
		}),
	}
	sec.engine.SetKey(fileKey)
	d.security = sec
	return nil
}

// encryptStream/encryptString apply the per-object key derivation and
// cipher (shared with the read path's CryptoEngine:
// AES-128 prepends a random IV, RC4 is applied directly).
func (s *securityWriter) encryptStream(ref objptr, data []byte) []byte {
	out, err := s.engine.EncryptData(data, int(ref.id), int(ref.gen))
	if err != nil {
		return data
	}
	return out
}

func (s *securityWriter) encryptString(ref objptr, data string) string {
	out := s.encryptStream(ref, []byte(data))
	return string(out)
}

// encryptDict builds the trailer's /Encrypt dictionary.
func (s *securityWriter) encryptDict(doc *Document) *PDFDict {
	d := doc.NewDict()
	d.Set("Filter", name("Standard"))
	d.Set("V", int64(s.v))
	d.Set("R", int64(s.r))
	d.Set("Length", int64(s.keyLenBit))
	d.Set("O", s.O)
	d.Set("U", s.U)
	d.Set("P", int64(int32(s.P)))
	d.Set("EncryptMetadata", true)
	if s.v == 4 {
		cf := doc.NewDict()
		stdCF := doc.NewDict()
		stdCF.Set("CFM", name("AESV2"))
		stdCF.Set("AuthEvent", name("DocOpen"))
		stdCF.Set("Length", int64(s.keyLenBit/8))
		cf.Set("StdCF", stdCF)
		d.Set("CF", cf)
		d.Set("StmF", name("StdCF"))
		d.Set("StrF", name("StdCF"))
	}
	return d
}
