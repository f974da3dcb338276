package hashfile

import (
	"bufio"
	"strings"
	"testing"

	"github.com/nebulouslabs/merkletreesum"
)

func TestCheckVersionLineAccepts(t *testing.T) {
	v, err := checkVersionLine("merkle_tree_checksum v1.0.0", "1.0.0")
	if err != nil {
		t.Fatalf("checkVersionLine: %v", err)
	}
	if v.String() != "1.0.0" {
		t.Errorf("expected 1.0.0, got %s", v.String())
	}
}

func TestCheckVersionLineRejectsIncompatible(t *testing.T) {
	if _, err := checkVersionLine("merkle_tree_checksum v2.0.0", "1.0.0"); err == nil {
		t.Error("expected an error for an incompatible major version")
	}
}

func TestCheckVersionLineRejectsWrongTool(t *testing.T) {
	if _, err := checkVersionLine("some_other_tool v1.0.0", "1.0.0"); err == nil {
		t.Error("expected an error for a mismatched tool name")
	}
}

func TestCheckVersionLineRejectsMissingV(t *testing.T) {
	if _, err := checkVersionLine("merkle_tree_checksum 1.0.0", "1.0.0"); err == nil {
		t.Error("expected an error for a version token missing its leading v")
	}
}

func TestParseHeaderParams(t *testing.T) {
	lines := [3]string{
		"Hash function: sha256",
		"Block size: 4096",
		"Branching factor: 4",
	}
	params, err := parseHeaderParams(lines)
	if err != nil {
		t.Fatalf("parseHeaderParams: %v", err)
	}
	if params.Hash != merkletree.SHA256 || params.BlockSize != 4096 || params.Branch != 4 {
		t.Errorf("unexpected params: %+v", params)
	}
}

func TestParseHeaderParamsAggregatesErrors(t *testing.T) {
	lines := [3]string{
		"Hash function: not-a-hash",
		"Block size: not-a-number",
		"Branching factor: 1",
	}
	_, err := parseHeaderParams(lines)
	if err == nil {
		t.Fatal("expected an aggregated error")
	}
}

func TestParseHeaderParamsMissingParameter(t *testing.T) {
	lines := [3]string{
		"Hash function: sha256",
		"Hash function: sha256",
		"Branching factor: 4",
	}
	if _, err := parseHeaderParams(lines); err == nil {
		t.Fatal("expected an error for a missing Block size parameter")
	}
}

func TestReadNoncommentLineSkipsComments(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("# a comment\n# another\nreal line\n"))
	line, err := readNoncommentLine(r)
	if err != nil {
		t.Fatalf("readNoncommentLine: %v", err)
	}
	if chompNewline(line) != "real line" {
		t.Errorf("expected %q, got %q", "real line", chompNewline(line))
	}
}
