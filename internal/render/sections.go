package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-textbook/internal/state"
)

var headingLine = regexp.MustCompile(`^<h([1-6])>(.*?)</h[1-6]>`)

// SplitSections cuts rendered HTML at every line that opens with a bare
// <hN> heading. Each section runs from its heading to the next one. HTML
// before the first heading is kept as an untitled level-0 section when it
// holds anything but whitespace.
func SplitSections(fragment string) []state.Section {
	var (
		sections []state.Section
		current  = state.Section{}
		lines    []string
	)

	flush := func() {
		body := strings.Join(lines, "\n")
		if current.Title == "" && current.Level == 0 && strings.TrimSpace(body) == "" {
			return
		}
		current.HTML = body
		sections = append(sections, current)
	}

	for _, raw := range strings.Split(fragment, "\n") {
		line := strings.ReplaceAll(raw, "\t", "    ")
		if m := headingLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			level, _ := strconv.Atoi(m[1])
			current = state.Section{Title: strings.TrimSpace(m[2]), Level: level}
			lines = lines[:0]
		}
		lines = append(lines, line)
	}
	flush()

	return sections
}
