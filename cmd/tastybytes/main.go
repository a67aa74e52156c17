// Command tastybytes is the local recipe client. It keeps its session and
// recipes in a SQLite file by default.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}
