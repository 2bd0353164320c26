package regex

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	"github.com/dekarrin/gudgeon/internal/langerr"
)

// ParseRegularDefinitionFile reads path and parses it with
// ParseRegularDefinitionText.
func ParseRegularDefinitionFile(path string) (*RegularDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, langerr.RegularDefinitionf("read regular definition file %q: %s", path, err.Error())
	}
	return ParseRegularDefinitionText(string(data))
}

// ParseRegularDefinitionText builds a RegularDefinition from the plain-text
// dialect: one definition per line, the first run of whitespace splitting
// the name from its pattern. Blank lines are skipped. Definitions are
// declared in the order their lines appear, so a later line may reference
// an earlier one's name via `{name}`.
func ParseRegularDefinitionText(text string) (*RegularDefinition, error) {
	rd := NewRegularDefinition()

	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		var fields []string
		if i := strings.IndexFunc(trimmed, unicode.IsSpace); i >= 0 {
			fields = []string{trimmed[:i], trimmed[i:]}
		}
		if len(fields) < 2 {
			// no whitespace found means the line has no whitespace at
			// all; fall back to a whitespace-class split.
			fields = strings.Fields(trimmed)
			if len(fields) < 2 {
				return nil, langerr.RegularDefinitionf("line %d: expected NAME and pattern separated by whitespace, got %q", lineNo, trimmed)
			}
			name := fields[0]
			pattern := strings.TrimSpace(strings.TrimPrefix(trimmed, name))
			if err := rd.Define(name, pattern); err != nil {
				return nil, err
			}
			continue
		}

		name := fields[0]
		pattern := strings.TrimSpace(fields[1])
		if pattern == "" {
			return nil, langerr.RegularDefinitionf("line %d: definition %q has no pattern", lineNo, name)
		}

		if err := rd.Define(name, pattern); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, langerr.RegularDefinitionf("reading regular definition text: %s", err.Error())
	}

	return rd, nil
}
