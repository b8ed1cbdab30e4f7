package requirement

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadFile parses a requirements.txt file. Blank lines, comments and pip
// options ("-r", "--index-url", ...) are skipped, a trailing backslash
// joins a line with the next, and a name listed twice keeps its first
// entry.
func ReadFile(path string) ([]Requirement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		out     []Requirement
		seen    = make(map[string]bool)
		pending strings.Builder
		start   int
	)
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if pending.Len() == 0 {
			start = n
		}
		if cont, ok := strings.CutSuffix(line, `\`); ok {
			pending.WriteString(cont)
			pending.WriteByte(' ')
			continue
		}
		pending.WriteString(line)
		entry := strings.TrimSpace(pending.String())
		pending.Reset()

		if entry == "" || entry[0] == '#' || entry[0] == '-' {
			continue
		}
		r, err := Parse(entry)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, start, err)
		}
		if !seen[r.Name] {
			seen[r.Name] = true
			out = append(out, r)
		}
	}
	return out, sc.Err()
}
