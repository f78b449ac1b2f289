// Package preprocess normalizes raw log lines by applying an ordered list of
// regex substitution rules, collapsing variable fields (PIDs, addresses,
// request IDs) into stable placeholders so semantically identical messages
// embed identically.
package preprocess

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// rule is one compiled pattern with its replacement text.
type rule struct {
	re          *regexp.Regexp
	replacement string
}

// Preprocessor applies a fixed, ordered list of substitution rules.
type Preprocessor struct {
	rules []rule
}

// New loads rules from a file, one per line, in the form
//
//	<pattern> :: <replacement>
//
// Lines starting with '#' and blank lines are skipped. Lines without the
// " :: " separator are skipped. A pattern that fails to compile is a load
// error.
func New(rulesPath string) (*Preprocessor, error) {
	f, err := os.Open(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	defer f.Close()

	p := &Preprocessor{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, " :: ", 2)
		if len(parts) != 2 {
			continue
		}
		re, err := regexp.Compile(parts[0])
		if err != nil {
			return nil, fmt.Errorf("preprocess: bad pattern %q: %w", parts[0], err)
		}
		p.rules = append(p.rules, rule{re: re, replacement: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("preprocess: read %s: %w", rulesPath, err)
	}
	return p, nil
}

// Normalize applies every rule in order. Each rule replaces all occurrences
// before the next rule runs, so later rules see earlier substitutions.
func (p *Preprocessor) Normalize(line string) string {
	for _, r := range p.rules {
		line = r.re.ReplaceAllString(line, r.replacement)
	}
	return line
}

// Len returns the number of loaded rules.
func (p *Preprocessor) Len() int {
	return len(p.rules)
}
