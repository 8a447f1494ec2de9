package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/harrisonrobin/tickbox/pkg/model"
)

const Source = "orgmode"

var (
	headingRegex  = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s+(?:\[#[A-Z]\]\s*)?(.*?)(?:\s+:[\w@:]+:)?\s*$`)
	otherHeading  = regexp.MustCompile(`^\*+\s`)
	planningRegex = regexp.MustCompile(`^(DEADLINE|SCHEDULED|CLOSED):`)
	drawerStart   = regexp.MustCompile(`^:[A-Z_]+:$`)
)

// parseFile parses an Org-mode file and returns its TODO and DONE headings.
func parseFile(filePath string) ([]model.Draft, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// ParseFiles parses multiple Org-mode files and returns all their drafts.
func ParseFiles(filePaths []string) ([]model.Draft, error) {
	var all []model.Draft
	for _, filePath := range filePaths {
		drafts, err := parseFile(filePath)
		if err != nil {
			return nil, err
		}
		all = append(all, drafts...)
	}
	return all, nil
}

// Parse reads Org-mode text. Every TODO or DONE heading becomes a draft whose
// description is the heading's body text, minus planning lines and drawers.
// A heading with no body uses its title as the description.
func Parse(r io.Reader) ([]model.Draft, error) {
	scanner := bufio.NewScanner(r)
	var drafts []model.Draft
	var current *model.Draft
	var body []string
	inDrawer := false

	flush := func() {
		if current == nil {
			return
		}
		current.Description = strings.TrimSpace(strings.Join(body, "\n"))
		if current.Description == "" {
			current.Description = current.Title
		}
		if current.Title != "" {
			drafts = append(drafts, *current)
		}
		current, body, inDrawer = nil, nil, false
	}

	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		if otherHeading.MatchString(raw) {
			flush()
			if m := headingRegex.FindStringSubmatch(raw); m != nil {
				current = &model.Draft{
					Title:  strings.TrimSpace(m[2]),
					Done:   m[1] == "DONE",
					Source: Source,
				}
			}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case inDrawer:
			if line == ":END:" {
				inDrawer = false
			}
		case drawerStart.MatchString(line) && line != ":END:":
			inDrawer = true
		case planningRegex.MatchString(line):
		default:
			if line != "" || len(body) > 0 {
				body = append(body, line)
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return drafts, nil
}
