package main

import "github.com/naka-gawa/issue-label-stats/cmd"

func main() {
	cmd.Execute(cmd.NewHistogramCommand())
}
