// Package core provides a small, stable facade over reposcan's internal
// engine for external integrations. It deliberately re-exports a narrow API
// surface so other tools can depend on a stable import path without reaching
// into internal implementation packages.
//
// Example:
//
//	s := core.NewScanner()
//	_ = s.AddContentRule("pw", `password=(\w+)`, nil, []string{"(?:test|example)"})
//	findings, err := s.Scan("/path/to/repo", "*")
//	if err != nil { /* handle */ }
//	for _, f := range findings {
//		fmt.Println(f.RuleName, f.CommitID, f.FilePath)
//	}
package core
