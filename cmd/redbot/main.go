package main

import "github.com/SebastianTibata/redbot/services/executor/cli"

func main() {
	cli.Execute()
}
