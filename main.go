package main

import "github.com/bnema/wtfcopy/cmd"

func main() {
	cmd.Execute()
}
