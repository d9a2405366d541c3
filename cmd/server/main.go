// Package main is the bandpath command: the REST server, migrations, the
// daily evaluation job and a development token helper.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
