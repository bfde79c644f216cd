package main

import "github.com/theirongolddev/orgburn/cmd"

func main() {
	cmd.Execute()
}
