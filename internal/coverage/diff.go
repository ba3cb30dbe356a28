package coverage

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

// ParseUnifiedDiff returns the added or changed line numbers per file of a
// unified diff, as produced by "git diff". Paths are taken from the new side
// without the "b/" prefix. Deleted files are skipped.
func ParseUnifiedDiff(r io.Reader) (map[string][]int, error) {
	modified := make(map[string][]int)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		file             string
		line             int
		oldLeft, newLeft int
	)
	for scanner.Scan() {
		text := scanner.Text()

		if oldLeft > 0 || newLeft > 0 {
			switch {
			case strings.HasPrefix(text, "+"):
				if file != "" {
					modified[file] = append(modified[file], line)
				}
				line++
				newLeft--
			case strings.HasPrefix(text, "-"):
				oldLeft--
			case strings.HasPrefix(text, `\`):
			default:
				line++
				oldLeft--
				newLeft--
			}
			continue
		}

		switch {
		case strings.HasPrefix(text, "+++ "):
			file = diffPath(strings.TrimPrefix(text, "+++ "))
			if _, ok := modified[file]; !ok && file != "" {
				modified[file] = nil
			}
		case strings.HasPrefix(text, "@@ "):
			h, err := parseHunk(text)
			if err != nil {
				return nil, err
			}
			line, oldLeft, newLeft = h.newStart, h.oldCount, h.newCount
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading diff: %w", err)
	}

	for f, lines := range modified {
		sort.Ints(lines)
		modified[f] = lines
	}
	return modified, nil
}

func diffPath(header string) string {
	name, _, _ := strings.Cut(header, "\t")
	name = strings.TrimSpace(name)
	if name == "/dev/null" {
		return ""
	}
	return path.Clean(strings.TrimPrefix(name, "b/"))
}

type hunk struct {
	oldCount, newStart, newCount int
}

// parseHunk parses a "@@ -a,b +c,d @@" header. Omitted counts are 1.
func parseHunk(header string) (hunk, error) {
	fields := strings.Fields(header)
	if len(fields) < 3 || !strings.HasPrefix(fields[1], "-") || !strings.HasPrefix(fields[2], "+") {
		return hunk{}, fmt.Errorf("invalid hunk header %q", header)
	}
	_, oldCount, err := parseRange(fields[1][1:])
	if err != nil {
		return hunk{}, fmt.Errorf("invalid hunk header %q: %w", header, err)
	}
	newStart, newCount, err := parseRange(fields[2][1:])
	if err != nil {
		return hunk{}, fmt.Errorf("invalid hunk header %q: %w", header, err)
	}
	return hunk{oldCount: oldCount, newStart: newStart, newCount: newCount}, nil
}

func parseRange(s string) (start, count int, err error) {
	startText, countText, hasCount := strings.Cut(s, ",")
	if start, err = strconv.Atoi(startText); err != nil {
		return 0, 0, err
	}
	count = 1
	if hasCount {
		if count, err = strconv.Atoi(countText); err != nil {
			return 0, 0, err
		}
	}
	return start, count, nil
}
