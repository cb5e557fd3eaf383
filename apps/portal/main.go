package main

import (
	"os"
)

func main() {
	c := newContainer()

	var cli *commandLine
	must(c.Invoke(func(c *commandLine) { cli = c }))

	if err := cli.run(os.Args); err != nil {
		cli.printError(err)
		os.Exit(1)
	}
}
