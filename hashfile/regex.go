package hashfile

import (
	"fmt"
	"regexp"
	"sync"
)

// Compiled hash-line regexes are keyed by hex digit count (which varies by
// hash function) and cached, mirroring parse_functions.rs's cached!-backed
// short_hash_regex/long_hash_regex. No pack repo supplies a generic
// memoization library for this, so a small mutex-guarded map is the
// stdlib-only, justified choice here.
var (
	shortRegexMu    sync.Mutex
	shortRegexCache = map[int]*regexp.Regexp{}

	longRegexMu    sync.Mutex
	longRegexCache = map[int]*regexp.Regexp{}

	fileListLineRegex = regexp.MustCompile(`^([[:digit:]]+) ("(?:[^"]|\\")*")(?:\n|\r\n)?$`)
)

// shortHashRegex matches a short-mode entry: "<hex>  "<name>"".
func shortHashRegex(hexDigits int) *regexp.Regexp {
	shortRegexMu.Lock()
	defer shortRegexMu.Unlock()
	if re, ok := shortRegexCache[hexDigits]; ok {
		return re
	}
	pattern := fmt.Sprintf(`^([[:xdigit:]]{%d})  ("(?:[^"]|\\")*")(?:\n|\r\n)?$`, hexDigits)
	re := regexp.MustCompile(pattern)
	shortRegexCache[hexDigits] = re
	return re
}

// longHashRegex matches a long-mode entry:
// "  <file-id> [0xSTART-0xEND{]|)} [0xSTART-0xEND{]|)} <hex>".
func longHashRegex(hexDigits int) *regexp.Regexp {
	longRegexMu.Lock()
	defer longRegexMu.Unlock()
	if re, ok := longRegexCache[hexDigits]; ok {
		return re
	}
	blockRange := `\[0x([[:xdigit:]]+)-0x([[:xdigit:]]+)(\]|\))`
	pattern := fmt.Sprintf(`^ *([[:digit:]]+) %s %s ([[:xdigit:]]{%d})(?:\n|\r\n)?$`,
		blockRange, blockRange, hexDigits)
	re := regexp.MustCompile(pattern)
	longRegexCache[hexDigits] = re
	return re
}
