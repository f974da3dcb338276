package hashfile

import (
	"bufio"
	"encoding/hex"
	"io"
	"strconv"
	"strings"

	"github.com/nebulouslabs/merkletreesum"
)

// Header is everything parsed from a hash file before any node or per-file
// entry is checked: the version, the tree parameters, and — depending on
// mode — either the long-mode file list or the full short-mode entry list.
//
// Short mode is read to EOF here rather than incrementally: a hash file's
// short-mode section is small (one line per file, no per-node records), so
// buffering it avoids needing a seekable reader at all, unlike the source's
// own two-pass seek-back.
type Header struct {
	ToolVersion  string
	Params       TreeParams
	Short        bool
	Files        []FileListEntry
	ShortEntries []ShortEntry
}

// FileListEntry is one line of a long-mode "Files:" block.
type FileListEntry struct {
	Path           string
	ExpectedLength uint64
}

// ShortEntry is one line of a short-mode "Hashes:" block: a file's expected
// root digest paired with its path.
type ShortEntry struct {
	Path string
	Hash []byte
}

// ReadHeader parses the version line, the three tree parameters, and the
// file/hash list header from br. toolVersion is
// checked against the file's version line per check_version_line's ^range
// semantics.
func ReadHeader(br *bufio.Reader, toolVersion string) (*Header, error) {
	versionLine, err := readNoncommentLine(br)
	if err != nil {
		return nil, &HeaderParsingError{Kind: MalformedFile}
	}
	fileVersion, err := checkVersionLine(chompNewline(versionLine), toolVersion)
	if err != nil {
		return nil, err
	}

	paramLines, err := readThreeLines(br)
	if err != nil {
		return nil, err
	}
	params, err := parseHeaderParams(paramLines)
	if err != nil {
		return nil, err
	}

	formatLine, err := br.ReadString('\n')
	if err != nil && formatLine == "" {
		return nil, &HeaderParsingError{Kind: MalformedFile}
	}
	switch chompNewline(formatLine) {
	case "Files:":
		files, err := readFilesList(br)
		if err != nil {
			return nil, err
		}
		return &Header{ToolVersion: fileVersion.String(), Params: params, Short: false, Files: files}, nil
	case "Hashes:":
		entries, err := readShortEntries(br, params)
		if err != nil {
			return nil, err
		}
		return &Header{ToolVersion: fileVersion.String(), Params: params, Short: true, ShortEntries: entries}, nil
	default:
		return nil, &HeaderParsingError{Kind: MalformedFile}
	}
}

func readFilesList(br *bufio.Reader) ([]FileListEntry, error) {
	var out []FileListEntry
	for {
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			return nil, &HeaderParsingError{Kind: MalformedFile}
		}
		if chompNewline(line) == "Hashes:" {
			return out, nil
		}
		m := fileListLineRegex.FindStringSubmatch(line)
		if m == nil {
			return nil, &HeaderParsingError{Kind: MalformedFile}
		}
		length, parseErr := strconv.ParseUint(m[1], 10, 64)
		if parseErr != nil {
			return nil, &HeaderParsingError{Kind: MalformedFile}
		}
		path, unquoteErr := unquoteFilename(m[2])
		if unquoteErr != nil {
			return nil, &HeaderParsingError{Kind: MalformedFile}
		}
		out = append(out, FileListEntry{Path: path, ExpectedLength: length})
	}
}

func readShortEntries(br *bufio.Reader, params TreeParams) ([]ShortEntry, error) {
	hexLen, _ := merkletree.HashLen(params.Hash)
	re := shortHashRegex(hexLen * 2)

	var out []ShortEntry
	for {
		line, err := br.ReadString('\n')
		if line == "" {
			if err == io.EOF {
				return out, nil
			}
			return nil, err
		}
		m := re.FindStringSubmatch(line)
		if m == nil {
			return nil, &VerificationError{Kind: MalformedEntry, Line: strings.TrimRight(line, "\r\n")}
		}
		hash, hexErr := hex.DecodeString(m[1])
		if hexErr != nil {
			return nil, &VerificationError{Kind: MalformedEntry, Line: strings.TrimRight(line, "\r\n")}
		}
		path, unquoteErr := unquoteFilename(m[2])
		if unquoteErr != nil {
			return nil, &VerificationError{Kind: MalformedEntry, Line: strings.TrimRight(line, "\r\n")}
		}
		out = append(out, ShortEntry{Path: path, Hash: hash})
		if err == io.EOF {
			return out, nil
		}
	}
}
