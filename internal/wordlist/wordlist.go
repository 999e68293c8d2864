// Package wordlist loads user word lists from files.
package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrEmptyList is returned when a list file has no entries.
var ErrEmptyList = errors.New("word list is empty")

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmptyList
	}
	return words, nil
}

// LoadAbbreviations reads an abbreviation list. A missing or empty file yields
// an empty set. Entries rejected by keep (IsAbbreviation when nil) are skipped.
func LoadAbbreviations(path string, keep FilterFunc) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	if path == "" {
		return set, nil
	}
	words, err := LoadWords(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrEmptyList) {
			return set, nil
		}
		return nil, fmt.Errorf("failed to load abbreviations: %w", err)
	}
	if keep == nil {
		keep = IsAbbreviation
	}
	for _, w := range words {
		entry := NormalizeAbbreviation(w)
		if keep(entry) {
			set[entry] = struct{}{}
		}
	}
	return set, nil
}
