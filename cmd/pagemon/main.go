package main

import (
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/pagemon/cmd/pagemon/cmds"
)

func main() {
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)
	os.Exit(cmds.Execute(os.Args[1:]))
}
