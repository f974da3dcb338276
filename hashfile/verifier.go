package hashfile

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nebulouslabs/merkletreesum"
)

// FileState is the per-file verification lifecycle.
type FileState int

const (
	Idle FileState = iota
	ReadingHeader
	MatchingNodes
	Done
	FailedPrecheck
	Mismatch
	MalformedEntryState
	UnexpectedEofState
)

// FileOutcome is the terminal result of verifying one listed file.
type FileOutcome struct {
	Path  string
	State FileState
	Err   error
}

// ExitCode maps a FileOutcome to the process exit code contribution
// defined by the command-line contract: 0 success, 1 pre-check failure, 2
// header/argument error (never produced per-file; surfaces earlier, from
// ReadHeader), 3 verification mismatch or malformed entry.
func (o FileOutcome) ExitCode() int {
	switch o.State {
	case Done:
		return 0
	case FailedPrecheck:
		return 1
	case Mismatch, MalformedEntryState, UnexpectedEofState:
		return 3
	default:
		return 3
	}
}

// Verify reads a whole hash file from r, re-hashes every listed file, and
// reports one FileOutcome per entry, in file order. Precheck failures abort
// that file's comparison only; verification continues to the next file.
func Verify(r io.Reader, toolVersion string, eval merkletree.Evaluator) (*Header, []FileOutcome, error) {
	br := bufio.NewReader(r)
	header, err := ReadHeader(br, toolVersion)
	if err != nil {
		return nil, nil, err
	}

	var outcomes []FileOutcome
	if header.Short {
		for _, entry := range header.ShortEntries {
			outcomes = append(outcomes, verifyShortEntry(header.Params, entry, eval))
		}
		return header, outcomes, nil
	}

	for i, entry := range header.Files {
		outcomes = append(outcomes, verifyLongEntry(header.Params, i+1, entry, br, eval))
	}
	return header, outcomes, nil
}

// precheckOpen opens path and, when expectedLength is non-nil, verifies its
// size matches before any byte of it is hashed.
func precheckOpen(path string, expectedLength *uint64) (*os.File, int64, *PreHashError) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, 0, &PreHashError{Kind: ReadPermissionDenied}
		}
		return nil, 0, &PreHashError{Kind: FileNotFound}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, &PreHashError{Kind: FileNotFound}
	}
	if expectedLength != nil && uint64(info.Size()) != *expectedLength {
		f.Close()
		return nil, 0, &PreHashError{Kind: MismatchedLength, StoredLength: *expectedLength, ComputedLength: uint64(info.Size())}
	}
	return f, info.Size(), nil
}

func verifyShortEntry(params TreeParams, entry ShortEntry, eval merkletree.Evaluator) FileOutcome {
	f, size, precheckErr := precheckOpen(entry.Path, nil)
	if precheckErr != nil {
		return FileOutcome{Path: entry.Path, State: FailedPrecheck, Err: precheckErr}
	}
	defer f.Close()

	digest, err := merkletree.HashFile(f, uint64(size), params.BlockSize, params.Branch, params.Hash, merkletree.DiscardSink{}, eval)
	if err != nil {
		return FileOutcome{Path: entry.Path, State: UnexpectedEofState, Err: err}
	}
	if !bytes.Equal(digest, entry.Hash) {
		return FileOutcome{Path: entry.Path, State: Mismatch, Err: &VerificationError{
			Kind:            MismatchedHash,
			StoredHashHex:   hex.EncodeToString(entry.Hash),
			ComputedHashHex: hex.EncodeToString(digest),
		}}
	}
	return FileOutcome{Path: entry.Path, State: Done}
}

func verifyLongEntry(params TreeParams, fileID int, entry FileListEntry, br *bufio.Reader, eval merkletree.Evaluator) FileOutcome {
	f, _, precheckErr := precheckOpen(entry.Path, &entry.ExpectedLength)
	if precheckErr != nil {
		// Skip this file's node records so the next file starts on its own.
		for n := merkletree.NodeCount(entry.ExpectedLength, params.BlockSize, params.Branch); n > 0; n-- {
			if _, err := br.ReadString('\n'); err != nil {
				break
			}
		}
		return FileOutcome{Path: entry.Path, State: FailedPrecheck, Err: precheckErr}
	}
	defer f.Close()

	hexLen, _ := merkletree.HashLen(params.Hash)
	sink := &longModeSink{br: br, fileID: fileID, hexDigits: hexLen * 2}

	_, err := merkletree.HashFile(f, entry.ExpectedLength, params.BlockSize, params.Branch, params.Hash, sink, eval)
	if sink.err != nil {
		state := Mismatch
		if ve, ok := sink.err.(*VerificationError); ok {
			switch ve.Kind {
			case MalformedEntry:
				state = MalformedEntryState
			case UnexpectedEof:
				state = UnexpectedEofState
			}
		}
		return FileOutcome{Path: entry.Path, State: state, Err: sink.err}
	}
	if err != nil {
		return FileOutcome{Path: entry.Path, State: UnexpectedEofState, Err: err}
	}
	return FileOutcome{Path: entry.Path, State: Done}
}

// longModeSink reads one expected record from br per node emitted, the way
// the verifier re-derives C3's traversal and compares it node-by-node
// against the stored long-mode entries.
type longModeSink struct {
	br        *bufio.Reader
	fileID    int
	hexDigits int
	err       error
}

func (s *longModeSink) Accept(r merkletree.HashRange) error {
	line, ioErr := s.br.ReadString('\n')
	if line == "" {
		if ioErr == io.EOF {
			s.err = &VerificationError{Kind: UnexpectedEof}
		} else {
			s.err = ioErr
		}
		return s.err
	}

	m := longHashRegex(s.hexDigits).FindStringSubmatch(line)
	if m == nil {
		s.err = &VerificationError{Kind: MalformedEntry, Line: strings.TrimRight(line, "\r\n")}
		return s.err
	}

	storedFileID, _ := strconv.Atoi(m[1])
	if storedFileID != s.fileID {
		s.err = &VerificationError{Kind: MismatchedFileID}
		return s.err
	}

	storedBlock, parseErr := parseBlockRange(m[2], m[3], m[4])
	if parseErr != nil {
		s.err = &VerificationError{Kind: MalformedEntry, Line: strings.TrimRight(line, "\r\n")}
		return s.err
	}
	if storedBlock != r.BlockRange {
		s.err = &VerificationError{Kind: MismatchedBlockRange, StoredRangeStr: storedBlock.String(), ComputedRangeStr: r.BlockRange.String()}
		return s.err
	}

	storedByte, parseErr := parseBlockRange(m[5], m[6], m[7])
	if parseErr != nil {
		s.err = &VerificationError{Kind: MalformedEntry, Line: strings.TrimRight(line, "\r\n")}
		return s.err
	}
	if storedByte != r.ByteRange {
		s.err = &VerificationError{Kind: MismatchedByteRange, StoredRangeStr: storedByte.String(), ComputedRangeStr: r.ByteRange.String()}
		return s.err
	}

	storedHash, hexErr := hex.DecodeString(m[8])
	if hexErr != nil || !bytes.Equal(storedHash, r.Hash) {
		s.err = &VerificationError{
			Kind:            MismatchedHash,
			ByteRangeStr:    r.ByteRange.String(),
			StoredHashHex:   m[8],
			ComputedHashHex: hex.EncodeToString(r.Hash),
		}
		return s.err
	}
	return nil
}

func parseBlockRange(startHex, endHex, bracket string) (merkletree.BlockRange, error) {
	start, err := strconv.ParseUint(startHex, 16, 64)
	if err != nil {
		return merkletree.BlockRange{}, err
	}
	end, err := strconv.ParseUint(endHex, 16, 64)
	if err != nil {
		return merkletree.BlockRange{}, err
	}
	return merkletree.BlockRange{Start: start, End: end, Inclusive: bracket == "]"}, nil
}
