package words

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads a custom word list, one word per line. Blank lines are
// skipped and embedded spaces are rejected.
func LoadFile(path string) ([]string, error) {
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

	var list []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.ContainsRune(line, ' ') {
			return nil, fmt.Errorf("word %q contains a space", line)
		}
		list = append(list, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return list, nil
}
