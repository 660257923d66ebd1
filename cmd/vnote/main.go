package main

import (
	"voicenotes/cmd/vnote/cmd"
)

func main() {
	cmd.Execute()
}
