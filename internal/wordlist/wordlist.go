// Package wordlist loads word lists and confusable tables from files.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/shuddho/internal/script"
)

// LoadWords reads one word per line from the provided file path. Blank
// lines and lines starting with '#' are skipped; duplicates are dropped.
func LoadWords(path string) ([]string, error) {
	var words []string
	seen := map[string]struct{}{}
	err := scanFile(path, func(line string) error {
		word := script.Normalize(line)
		if _, ok := seen[word]; ok {
			return nil
		}
		seen[word] = struct{}{}
		words = append(words, word)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// LoadConfusables reads a table of commonly confused spellings. Each line
// has the form "wrong = right[, right...]".
func LoadConfusables(path string) (map[string][]string, error) {
	table := map[string][]string{}
	lineNo := 0
	err := scanFile(path, func(line string) error {
		lineNo++
		wrong, rights, ok := strings.Cut(line, "=")
		wrong = script.Normalize(strings.TrimSpace(wrong))
		if !ok || wrong == "" {
			return fmt.Errorf("line %d: expected \"wrong = right\"", lineNo)
		}
		for _, right := range strings.Split(rights, ",") {
			right = script.Normalize(strings.TrimSpace(right))
			if right == "" || right == wrong {
				continue
			}
			table[wrong] = appendUnique(table[wrong], right)
		}
		if len(table[wrong]) == 0 {
			return fmt.Errorf("line %d: no replacement for %q", lineNo, wrong)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func scanFile(path string, fn func(line string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return scanLines(file, fn)
}

func scanLines(r io.Reader, fn func(line string) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
