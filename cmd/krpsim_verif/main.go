// cmd/krpsim_verif/main.go
//
// Entry point of the trace verifier; see cmd/verif.go

package main

import (
	"github.com/krpsim/krpsim/cmd"
)

func main() {
	cmd.ExecuteVerif()
}
