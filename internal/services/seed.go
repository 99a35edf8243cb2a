package services

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"fintrack/internal/core"
)

// LoadSeedCategories reads the categories used to seed an empty collection.
// Each non-blank line is "type:name"; lines starting with # are comments.
// An empty path returns the default categories.
func LoadSeedCategories(path string) ([]core.Category, error) {
	if path == "" {
		return core.DefaultCategories(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	var cats []core.Category
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		typStr, name, ok := strings.Cut(text, ":")
		if !ok {
			return nil, fmt.Errorf("seed file line %d: expected type:name", line)
		}
		typ, err := core.ParseTxType(typStr)
		if err != nil {
			return nil, fmt.Errorf("seed file line %d: %w", line, err)
		}
		c := core.Category{ID: int64(len(cats) + 1), Name: strings.TrimSpace(name), Type: typ}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("seed file line %d: %w", line, err)
		}
		cats = append(cats, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if len(cats) == 0 {
		return core.DefaultCategories(), nil
	}
	return cats, nil
}
