package hashfile

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nebulouslabs/merkletreesum"
)

func TestVerifyLongModeUnexpectedEOF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.bin")
	content := []byte("abcd1234")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var hashBuf bytes.Buffer
	params := testParams()
	if err := WriteVersionAndParams(&hashBuf, "1.0.0", params); err != nil {
		t.Fatalf("WriteVersionAndParams: %v", err)
	}
	entries := []FileListEntry{{Path: path, ExpectedLength: uint64(len(content))}}
	if err := WriteFilesList(&hashBuf, entries); err != nil {
		t.Fatalf("WriteFilesList: %v", err)
	}
	// Leave the node list empty: the first Accept call finds nothing to
	// read against and must report UnexpectedEof rather than hang or panic.

	_, outcomes, err := Verify(&hashBuf, "1.0.0", merkletree.NewDummyEvaluator())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].State != UnexpectedEofState {
		t.Fatalf("expected a single UnexpectedEofState outcome, got %+v", outcomes)
	}
	if outcomes[0].ExitCode() != 3 {
		t.Errorf("expected exit code 3, got %d", outcomes[0].ExitCode())
	}
}

func TestVerifyLongModeMalformedEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.bin")
	content := []byte("ab")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var hashBuf bytes.Buffer
	params := testParams()
	if err := WriteVersionAndParams(&hashBuf, "1.0.0", params); err != nil {
		t.Fatalf("WriteVersionAndParams: %v", err)
	}
	entries := []FileListEntry{{Path: path, ExpectedLength: uint64(len(content))}}
	if err := WriteFilesList(&hashBuf, entries); err != nil {
		t.Fatalf("WriteFilesList: %v", err)
	}
	hashBuf.WriteString("this is not a valid entry line\n")

	_, outcomes, err := Verify(&hashBuf, "1.0.0", merkletree.NewDummyEvaluator())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].State != MalformedEntryState {
		t.Fatalf("expected a single MalformedEntryState outcome, got %+v", outcomes)
	}
}

func TestLongHashRegexMatchesWrittenEntry(t *testing.T) {
	var buf bytes.Buffer
	rec := merkletree.HashRange{
		BlockRange: merkletree.BlockRange{Start: 0, End: 1, Inclusive: true},
		ByteRange:  merkletree.BlockRange{Start: 0, End: 7, Inclusive: true},
		Hash:       bytes.Repeat([]byte{0x0f}, 32),
	}
	if err := WriteLongEntry(&buf, 3, rec); err != nil {
		t.Fatalf("WriteLongEntry: %v", err)
	}
	re := longHashRegex(64)
	br := bufio.NewReader(&buf)
	line, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	m := re.FindStringSubmatch(line)
	if m == nil {
		t.Fatalf("longHashRegex did not match written line %q", line)
	}
	if m[1] != "3" {
		t.Errorf("expected file id 3, got %s", m[1])
	}
}
