//go:build !wasm

// Command fluentgen generates fluentsql model code for the structs declared
// in model.go and models.go files under the current directory.
package main

import (
	"fmt"
	"os"

	"github.com/tinywasm/fluentsql/internal/log"
	"github.com/tinywasm/fluentsql/internal/modelgen"
)

func main() {
	g := modelgen.New()
	g.SetLog(func(messages ...any) {
		log.Warn("%s", fmt.Sprint(messages...))
	})
	if len(os.Args) > 1 {
		g.SetRootDir(os.Args[1])
	}
	if err := g.Run(); err != nil {
		log.Error("fluentgen: %v", err)
		os.Exit(1)
	}
}
