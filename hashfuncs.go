package merkletree

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"hash/crc32"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// HashID names one of the hash functions recognized by the registry. The
// string form is what appears in a hash-file's "Hash function:" line.
type HashID string

// Recognized hash function identifiers, matching the stable names written
// to and read from hash-file headers.
const (
	CRC32      HashID = "crc32"
	SHA224     HashID = "sha224"
	SHA256     HashID = "sha256"
	SHA384     HashID = "sha384"
	SHA512     HashID = "sha512"
	SHA512_224 HashID = "sha512_224"
	SHA512_256 HashID = "sha512_256"
	SHA3_224   HashID = "sha3_224"
	SHA3_256   HashID = "sha3_256"
	SHA3_384   HashID = "sha3_384"
	SHA3_512   HashID = "sha3_512"
	Blake2b512 HashID = "blake2b512"
	Blake2s256 HashID = "blake2s256"
	Blake3     HashID = "blake3"
)

// aliases maps back-compat spellings to their canonical HashID, mirroring
// hash_enum.rs's strum serialize aliases.
var aliases = map[string]HashID{
	"sha512trunc224": SHA512_224,
	"sha512trunc256": SHA512_256,
	"blake2b":        Blake2b512,
	"blake2s":        Blake2s256,
}

// backend describes one registered hash function: its stable 1-byte code
// (reserved for a future binary format), its fixed digest length, and a
// factory producing a fresh streaming hash.Hash.
type backend struct {
	code    byte
	size    int
	factory func() hash.Hash
}

// Encoding mirrors hash_enum.rs: bit 0x80 set for cryptographic hashes, bit
// 0x40 set for hashes recommended for use, low 5 bits a per-hash counter.
var registry = map[HashID]backend{
	CRC32:      {code: 0x40, size: crc32.Size, factory: newCrc32},
	SHA224:     {code: 0xc0, size: sha256.Size224, factory: func() hash.Hash { return sha256.New224() }},
	SHA256:     {code: 0xc1, size: sha256.Size, factory: sha256.New},
	SHA384:     {code: 0xc4, size: sha512.Size384, factory: sha512.New384},
	SHA512:     {code: 0xc5, size: sha512.Size, factory: sha512.New},
	SHA512_224: {code: 0xc6, size: sha512.Size224, factory: sha512.New512_224},
	SHA512_256: {code: 0xc7, size: sha512.Size256, factory: sha512.New512_256},
	SHA3_224:   {code: 0xc8, size: 28, factory: sha3.New224},
	SHA3_256:   {code: 0xc9, size: 32, factory: sha3.New256},
	SHA3_384:   {code: 0xca, size: 48, factory: sha3.New384},
	SHA3_512:   {code: 0xcb, size: 64, factory: sha3.New512},
	Blake2b512: {code: 0xcc, size: 64, factory: newBlake2b512},
	Blake2s256: {code: 0xcd, size: 32, factory: newBlake2s256},
	Blake3:     {code: 0xce, size: 32, factory: blake3.New},
}

func newCrc32() hash.Hash {
	return crc32.NewIEEE()
}

func newBlake2b512() hash.Hash {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err) // blake2b.New512 only errors on a too-long key, and we pass none
	}
	return h
}

func newBlake2s256() hash.Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err) // same as above: no key means no error
	}
	return h
}

// ResolveHashID normalizes a user- or hash-file-supplied hash name,
// following the back-compat aliases in hash_enum.rs.
func ResolveHashID(name string) (HashID, bool) {
	if canonical, ok := aliases[name]; ok {
		return canonical, true
	}
	id := HashID(name)
	if _, ok := registry[id]; ok {
		return id, true
	}
	return "", false
}

// HashLen returns the fixed digest length, in bytes, produced by id.
func HashLen(id HashID) (int, bool) {
	b, ok := registry[id]
	return b.size, ok
}

// HashCode returns the stable 1-byte encoding reserved for a future binary
// format.
func HashCode(id HashID) (byte, bool) {
	b, ok := registry[id]
	return b.code, ok
}

// NewHash returns a fresh streaming hash.Hash for id.
func NewHash(id HashID) (hash.Hash, bool) {
	b, ok := registry[id]
	if !ok {
		return nil, false
	}
	return b.factory(), true
}

// KnownHashIDs returns every canonical HashID the registry recognizes, in a
// stable order suitable for CLI help text.
func KnownHashIDs() []HashID {
	return []HashID{
		CRC32, SHA224, SHA256, SHA384, SHA512, SHA512_224, SHA512_256,
		SHA3_224, SHA3_256, SHA3_384, SHA3_512, Blake2b512, Blake2s256, Blake3,
	}
}
