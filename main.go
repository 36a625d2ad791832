package main

import "github.com/theirongolddev/dayburn/cmd"

func main() {
	cmd.Execute()
}
