package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/nebulouslabs/merkletreesum"
	"github.com/nebulouslabs/merkletreesum/hashfile"
	"github.com/nebulouslabs/merkletreesum/internal/abbreviate"
)

// toolVersion is written to every generated hash file's version line and
// checked against the ^toolVersion compatibility range on read.
const toolVersion = "1.0.0"

func main() {
	app := &cli.App{
		Name:    hashfile.ToolName,
		Usage:   "compute and verify Merkle tree checksums of files",
		Version: toolVersion,
		Commands: []*cli.Command{
			generateHashCommand(),
			verifyHashCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		slog.Error(err.Error())
		os.Exit(2)
	}
}

func generateHashCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate-hash",
		Usage:     "generate a hash file for one or more files or directories",
		ArgsUsage: "FILES...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "hash-function", Aliases: []string{"f"}, Value: "sha256", Usage: "hash function to use"},
			&cli.UintFlag{Name: "branch-factor", Aliases: []string{"b"}, Value: 4, Usage: "branch factor for the tree"},
			&cli.StringFlag{Name: "block-size", Aliases: []string{"s"}, Value: "4096", Usage: "block size, accepts a K/M/G suffix"},
			&cli.BoolFlag{Name: "short", Usage: "write only per-file root hashes"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "path to write the hash file to"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log each discovered file as it is queued"},
		},
		Action: runGenerateHash,
	}
}

func verifyHashCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify-hash",
		Usage:     "verify every file listed in a previously generated hash file",
		ArgsUsage: "HASHFILE",
		Action:    runVerifyHash,
	}
}

func runGenerateHash(c *cli.Context) error {
	hashID, ok := merkletree.ResolveHashID(c.String("hash-function"))
	if !ok {
		return cli.Exit(fmt.Sprintf("Error: unknown hash function %q", c.String("hash-function")), 2)
	}
	branch := c.Uint("branch-factor")
	if branch < 2 || branch > 0xffff {
		return cli.Exit(fmt.Sprintf("Error: invalid branch factor %d", branch), 2)
	}
	blockSize, err := parseBlockSize(c.String("block-size"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 2)
	}
	if c.Args().Len() == 0 {
		return cli.Exit("Error: no input files given", 2)
	}

	verbose := c.Bool("verbose")
	paths, err := discoverFiles(c.Args().Slice(), verbose)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 2)
	}

	out, err := os.Create(c.String("output"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error creating output file: %s", err), 2)
	}
	defer out.Close()

	params := hashfile.TreeParams{Hash: hashID, BlockSize: blockSize, Branch: uint16(branch)}
	if err := hashfile.WriteVersionAndParams(out, toolVersion, params); err != nil {
		return cli.Exit(fmt.Sprintf("Error writing hash file: %s", err), 2)
	}

	short := c.Bool("short")
	eval := merkletree.NewPoolEvaluator(0)

	if short {
		if err := hashfile.WriteHashesHeader(out); err != nil {
			return cli.Exit(fmt.Sprintf("Error writing hash file: %s", err), 2)
		}
		exitCode := 0
		for _, path := range paths {
			digest, fileErr := hashOneFile(path, params, eval)
			if fileErr != nil {
				slog.Error("could not hash file", "file", path, "error", fileErr)
				exitCode = max(exitCode, 1)
				continue
			}
			if err := hashfile.WriteShortEntry(out, digest, path); err != nil {
				return cli.Exit(fmt.Sprintf("Error writing hash file: %s", err), 2)
			}
		}
		os.Exit(exitCode)
	}

	entries := make([]hashfile.FileListEntry, 0, len(paths))
	for _, path := range paths {
		info, statErr := os.Stat(path)
		if statErr != nil {
			return cli.Exit(fmt.Sprintf("Error stat-ing %s: %s", path, statErr), 1)
		}
		entries = append(entries, hashfile.FileListEntry{Path: path, ExpectedLength: uint64(info.Size())})
	}
	if err := hashfile.WriteFilesList(out, entries); err != nil {
		return cli.Exit(fmt.Sprintf("Error writing hash file: %s", err), 2)
	}

	exitCode := 0
	for i, entry := range entries {
		f, openErr := os.Open(entry.Path)
		if openErr != nil {
			slog.Error("could not open file", "file", entry.Path, "error", openErr)
			exitCode = max(exitCode, 1)
			continue
		}
		sink := merkletree.FuncSink(func(r merkletree.HashRange) error {
			return hashfile.WriteLongEntry(out, i+1, r)
		})
		_, hashErr := merkletree.HashFile(f, entry.ExpectedLength, params.BlockSize, params.Branch, params.Hash, sink, eval)
		f.Close()
		if hashErr != nil {
			slog.Error("could not hash file", "file", entry.Path, "error", hashErr)
			exitCode = max(exitCode, 1)
		}
	}
	os.Exit(exitCode)
	return nil
}

func hashOneFile(path string, params hashfile.TreeParams, eval merkletree.Evaluator) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return merkletree.HashFile(f, uint64(info.Size()), params.BlockSize, params.Branch, params.Hash, merkletree.DiscardSink{}, eval)
}

// discoverFiles expands directories into the regular files beneath them,
// matching generate-hash's positional FILES argument: files are taken
// as-is, directories are walked recursively.
func discoverFiles(args []string, verbose bool) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("file %s does not exist", arg)
		}
		if !info.IsDir() {
			logDiscovered(arg, verbose)
			out = append(out, arg)
			continue
		}
		walkErr := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				logDiscovered(path, verbose)
				out = append(out, path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}
	return out, nil
}

func logDiscovered(path string, verbose bool) {
	if !verbose {
		return
	}
	slog.Info("queued file", "path", abbreviate.Filename(path, 80))
}

func runVerifyHash(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("Error: verify-hash takes exactly one hash file argument", 2)
	}
	path := c.Args().First()
	f, err := os.Open(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error opening hash file: %s", err), 2)
	}
	defer f.Close()

	eval := merkletree.NewPoolEvaluator(0)
	_, outcomes, err := hashfile.Verify(f, toolVersion, eval)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 2)
	}

	exitCode := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			slog.Error("verification failed", "file", outcome.Path, "error", outcome.Err)
		}
		exitCode = max(exitCode, outcome.ExitCode())
	}
	os.Exit(exitCode)
	return nil
}

