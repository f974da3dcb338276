package hashfile

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/nebulouslabs/merkletreesum"
)

// WriteVersionAndParams writes the version line and the three header
// parameters, in the fixed order the writer always uses (hash, block size,
// branch), matching FileHeader's Display impl.
func WriteVersionAndParams(w io.Writer, toolVersion string, params TreeParams) error {
	if _, err := fmt.Fprintf(w, "%s v%s\n", ToolName, toolVersion); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Hash function: %s\n", params.Hash); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Block size: %d\n", params.BlockSize); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Branching factor: %d\n", params.Branch)
	return err
}

// WriteFilesList writes the long-mode "Files:" block: one
// "<decimal-length> <quoted-escaped-path>" line per entry, followed by the
// "Hashes:" line that begins the node list.
func WriteFilesList(w io.Writer, entries []FileListEntry) error {
	if _, err := io.WriteString(w, "Files:\n"); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%d %s\n", e.ExpectedLength, quoteFilename(e.Path)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "Hashes:\n")
	return err
}

// WriteHashesHeader writes the short-mode "Hashes:" line; entries follow
// directly, one per file, via WriteShortEntry.
func WriteHashesHeader(w io.Writer) error {
	_, err := io.WriteString(w, "Hashes:\n")
	return err
}

// WriteLongEntry writes one node record in long mode:
// "  <file-id> <block_range> <byte_range> <hex-digest>".
func WriteLongEntry(w io.Writer, fileID int, r merkletree.HashRange) error {
	_, err := fmt.Fprintf(w, "  %d %s %s %s\n",
		fileID, r.BlockRange.String(), r.ByteRange.String(), hex.EncodeToString(r.Hash))
	return err
}

// WriteShortEntry writes one short-mode line: "<hex-digest>  <quoted-path>".
func WriteShortEntry(w io.Writer, hash []byte, path string) error {
	_, err := fmt.Fprintf(w, "%s  %s\n", hex.EncodeToString(hash), quoteFilename(path))
	return err
}
