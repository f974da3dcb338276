package hashfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gitlab.com/NebulousLabs/errors"

	"github.com/nebulouslabs/merkletreesum"
)

// ToolName is the name written on a hash file's version line and checked
// back on read, mirroring crate_name!() in the source this format was
// distilled from.
const ToolName = "merkle_tree_checksum"

// TreeParams is the tree shape a hash file was generated under: the three
// values that must reproduce the same traversal on verification.
type TreeParams struct {
	Hash      merkletree.HashID
	BlockSize uint32
	Branch    uint16
}

// readNoncommentLine reads lines from r, skipping any that begin with '#',
// and returns the first line that doesn't. Comments are only recognized
// here, before the version line; nothing later in the file skips them
// (parse_functions.rs's next_noncomment_line).
func readNoncommentLine(r *bufio.Reader) (string, error) {
	for {
		line, err := r.ReadString('\n')
		if line == "" && err != nil {
			return "", err
		}
		if !strings.HasPrefix(line, "#") {
			return line, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// chompNewline strips a trailing "\n" or "\r\n".
func chompNewline(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line
}

// checkVersionLine parses and validates a version line of the form
// "merkle_tree_checksum vX.Y.Z" against the ^toolVersion compatibility
// range (parse_functions.rs's check_version_line).
func checkVersionLine(line string, toolVersion string) (*semver.Version, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return nil, &HeaderParsingError{Kind: MalformedFile}
	}
	if fields[0] != ToolName {
		return nil, &HeaderParsingError{Kind: MalformedFile}
	}
	versionToken := fields[1]
	if !strings.HasPrefix(versionToken, "v") {
		return nil, &HeaderParsingError{Kind: MalformedVersion, Raw: versionToken}
	}
	fileVersion, err := semver.NewVersion(versionToken[1:])
	if err != nil {
		return nil, &HeaderParsingError{Kind: MalformedVersion, Raw: versionToken[1:]}
	}
	constraint, err := semver.NewConstraint("^" + toolVersion)
	if err != nil {
		return nil, errors.AddContext(err, "parsing tool version constraint")
	}
	if !constraint.Check(fileVersion) {
		return nil, &HeaderParsingError{Kind: IncompatibleVersion, Raw: fileVersion.String()}
	}
	return fileVersion, nil
}

// parseHeaderParams parses the three "Key: Value" lines (any order) into a
// TreeParams, aggregating every error encountered the way
// parse_functions.rs's get_hash_params does, via errors.Compose so a single
// malformed header reports everything wrong with it at once.
func parseHeaderParams(lines [3]string) (TreeParams, error) {
	var (
		params     TreeParams
		haveHash   bool
		haveBlock  bool
		haveBranch bool
		errs       []error
	)
	for _, line := range lines {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			errs = append(errs, &HeaderParsingError{Kind: MalformedFile})
			continue
		}
		key, value := parts[0], strings.TrimSpace(parts[1])
		switch key {
		case "Hash function":
			id, ok := merkletree.ResolveHashID(value)
			if !ok {
				errs = append(errs, &HeaderParsingError{Kind: BadParameterValue, Which: key, Raw: value})
				continue
			}
			params.Hash = id
			haveHash = true
		case "Block size":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil || n == 0 {
				errs = append(errs, &HeaderParsingError{Kind: BadParameterValue, Which: key, Raw: value})
				continue
			}
			params.BlockSize = uint32(n)
			haveBlock = true
		case "Branching factor":
			n, err := strconv.ParseUint(value, 10, 16)
			if err != nil || n < 2 {
				errs = append(errs, &HeaderParsingError{Kind: BadParameterValue, Which: key, Raw: value})
				continue
			}
			params.Branch = uint16(n)
			haveBranch = true
		default:
			errs = append(errs, &HeaderParsingError{Kind: UnexpectedParameter, Which: key})
		}
	}
	if !haveHash {
		errs = append(errs, &HeaderParsingError{Kind: MissingParameter, Which: "Hash function"})
	}
	if !haveBlock {
		errs = append(errs, &HeaderParsingError{Kind: MissingParameter, Which: "Block size"})
	}
	if !haveBranch {
		errs = append(errs, &HeaderParsingError{Kind: MissingParameter, Which: "Branching factor"})
	}
	if len(errs) > 0 {
		return TreeParams{}, errors.Compose(errs...)
	}
	return params, nil
}

// readThreeLines reads exactly three newline-terminated lines, erroring if
// EOF is reached first (file_header.rs's from_file parameter-line loop).
func readThreeLines(r *bufio.Reader) ([3]string, error) {
	var out [3]string
	for i := range out {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return out, &HeaderParsingError{Kind: MalformedFile}
			}
			return out, err
		}
		out[i] = chompNewline(line)
	}
	return out, nil
}
