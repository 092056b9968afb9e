package main

import "github.com/mj1618/uia-provider/cmd"

func main() {
	cmd.Execute()
}
