// The main package for the roster-crawler executable.
package main

import (
	"github.com/sportsgraph/roster-crawler/cmd"
)

func main() {
	cmd.Execute()
}
