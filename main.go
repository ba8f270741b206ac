package main

import "github.com/varalys/reposcan/cmd/reposcan"

func main() {
	reposcan.Execute()
}
