package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseBlockSize parses a block size given as a decimal integer with an
// optional K/M/G suffix (base 1024), e.g. "4096", "4K", "1M".
func parseBlockSize(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty block size")
	}
	multiplier := uint64(1)
	suffix := s[len(s)-1]
	numPart := s
	switch suffix {
	case 'k', 'K':
		multiplier = 1024
		numPart = s[:len(s)-1]
	case 'm', 'M':
		multiplier = 1024 * 1024
		numPart = s[:len(s)-1]
	case 'g', 'G':
		multiplier = 1024 * 1024 * 1024
		numPart = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse size string %q", s)
	}
	total := n * multiplier
	if total == 0 || total > (1<<32-1) {
		return 0, fmt.Errorf("block size %q out of range", s)
	}
	return uint32(total), nil
}
