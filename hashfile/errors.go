// Package hashfile implements the persisted hash-file format: the header
// grammar, the long- and short-mode writers, and the reader/verifier state
// machine built on top of the merkletree package's traversal and hasher.
package hashfile

import (
	"fmt"

	"gitlab.com/NebulousLabs/errors"
)

// PreHashErrorKind names one of the failures a file can suffer before any
// byte of it is ever read for hashing.
type PreHashErrorKind int

const (
	FileNotFound PreHashErrorKind = iota
	ReadPermissionDenied
	MismatchedLength
)

// PreHashError reports why a listed file could not even be opened for
// hashing, or why its length disagreed with what the hash file recorded.
type PreHashError struct {
	Kind           PreHashErrorKind
	StoredLength   uint64
	ComputedLength uint64
}

func (e *PreHashError) Error() string {
	switch e.Kind {
	case FileNotFound:
		return "file not found"
	case ReadPermissionDenied:
		return "permission denied to read"
	case MismatchedLength:
		return fmt.Sprintf("mismatched file length:\n  expected: %d\n  actual:   %d", e.StoredLength, e.ComputedLength)
	default:
		return "unknown pre-hash error"
	}
}

// HeaderParsingError reports a malformed or semantically invalid hash-file
// header.
type HeaderParsingError struct {
	Kind  HeaderParsingErrorKind
	Which string // parameter name, for Missing/BadParameterValue/Unexpected
	Raw   string // raw offending text, for BadParameterValue/MalformedVersion/IncompatibleVersion
}

type HeaderParsingErrorKind int

const (
	MalformedFile HeaderParsingErrorKind = iota
	UnexpectedParameter
	MissingParameter
	BadParameterValue
	MalformedVersion
	IncompatibleVersion
)

func (e *HeaderParsingError) Error() string {
	switch e.Kind {
	case MalformedFile:
		return "hash file is malformed: unable to parse tree parameters"
	case UnexpectedParameter:
		return fmt.Sprintf("hash file has unexpected parameter %s", e.Which)
	case MissingParameter:
		return fmt.Sprintf("hash file is missing parameter %s", e.Which)
	case BadParameterValue:
		return fmt.Sprintf("hash file parameter %s has invalid value %s", e.Which, e.Raw)
	case MalformedVersion:
		return fmt.Sprintf("hash file has malformed version %s", e.Raw)
	case IncompatibleVersion:
		return fmt.Sprintf("hash file version %s is not compatible with this tool", e.Raw)
	default:
		return "unknown header parsing error"
	}
}

// VerificationErrorKind names one way a stored entry can fail to match the
// recomputed tree.
type VerificationErrorKind int

const (
	MismatchedFileID VerificationErrorKind = iota
	MismatchedBlockRange
	MismatchedByteRange
	MismatchedHash
	MalformedEntry
	UnexpectedEof
)

// VerificationError reports a mismatch between a stored hash-file entry and
// what re-hashing the file actually produced.
type VerificationError struct {
	Kind             VerificationErrorKind
	StoredRangeStr   string
	ComputedRangeStr string
	StoredHashHex    string
	ComputedHashHex  string
	ByteRangeStr     string // set on MismatchedHash when a byte range is known
	Line             string // set on MalformedEntry
}

func (e *VerificationError) Error() string {
	switch e.Kind {
	case MismatchedFileID:
		return "found entry for different file"
	case MismatchedBlockRange:
		return fmt.Sprintf("mismatched block range in entry:\n  stored:   %s\n  computed: %s", e.StoredRangeStr, e.ComputedRangeStr)
	case MismatchedByteRange:
		return fmt.Sprintf("mismatched byte range in entry:\n  stored:   %s\n  computed: %s", e.StoredRangeStr, e.ComputedRangeStr)
	case MismatchedHash:
		if e.ByteRangeStr != "" {
			return fmt.Sprintf("hash mismatch over byte range %s:\n  stored:   %s\n  computed: %s", e.ByteRangeStr, e.StoredHashHex, e.ComputedHashHex)
		}
		return fmt.Sprintf("hash mismatch:\n  stored:   %s\n  computed: %s", e.StoredHashHex, e.ComputedHashHex)
	case MalformedEntry:
		return fmt.Sprintf("found malformed entry %q", e.Line)
	case UnexpectedEof:
		return "unexpected EOF"
	default:
		return "unknown verification error"
	}
}

// ErrConsumerRejected mirrors merkletree.ErrConsumerRejected at the
// hash-file layer: the sink backing the verifier's recomputation rejected a
// node before verification could complete.
var ErrConsumerRejected = errors.New("hashfile: sink rejected a node during verification")
