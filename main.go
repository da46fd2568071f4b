package main

import "github.com/TheCodeCurrents/atlas-toolchain/cmd"

func main() {
	cmd.Execute()
}
