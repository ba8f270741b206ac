package rules

import "regexp"

// ScanContent runs every content rule over the buffer in insertion order and
// returns the surviving matches. For each non-overlapping occurrence of a
// rule's pattern the captured substring is checked against the rule's
// blacklist (any partial match discards it) and, when non-empty, the
// whitelist (at least one partial match is required). Rules are independent:
// the same region of the buffer may produce matches from several rules.
func (s *Store) ScanContent(content []byte) []Match {
	var out []Match
	for i := range s.contentRules {
		rule := &s.contentRules[i]
		for _, m := range rule.pattern.FindAllSubmatch(content, -1) {
			captured := m[1]
			if anyMatch(rule.blacklist, captured) {
				continue
			}
			if len(rule.whitelist) > 0 && !anyMatch(rule.whitelist, captured) {
				continue
			}
			out = append(out, Match{RuleName: rule.Name, Text: string(captured)})
		}
	}
	return out
}

// ScanFileName runs every file-name rule against the path in insertion
// order. A partial match reports the whole path as the matched text.
func (s *Store) ScanFileName(path string) []Match {
	var out []Match
	for i := range s.fileNameRules {
		rule := &s.fileNameRules[i]
		if rule.pattern.MatchString(path) {
			out = append(out, Match{RuleName: rule.Name, Text: path})
		}
	}
	return out
}

// CheckPattern is a diagnostic helper for rule authors: it compiles pattern
// under the content-rule contract (exactly one capturing group) and returns
// every captured substring found in content. The result equals what a
// content rule with that pattern and no refinement lists would report.
func CheckPattern(content []byte, pattern string) ([]string, error) {
	re, err := compileContentPattern(pattern)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range re.FindAllSubmatch(content, -1) {
		out = append(out, string(m[1]))
	}
	return out, nil
}

func anyMatch(res []*regexp.Regexp, b []byte) bool {
	for _, re := range res {
		if re.Match(b) {
			return true
		}
	}
	return false
}
