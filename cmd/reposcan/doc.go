// Package reposcan provides the command-line interface for the reposcan
// tool. It configures subcommands (scan, clone-scan, content, check-pattern),
// parses flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/varalys/reposcan/cmd/reposcan"
//	func main() { reposcan.Execute() }
package reposcan
