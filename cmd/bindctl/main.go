// Command bindctl builds a demo binding graph on the engine and exercises it.
//
//	bindctl graph --target service
//	bindctl resolve --count 1000 --scopes 8 --workers 4
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
