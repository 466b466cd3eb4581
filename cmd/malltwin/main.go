package main

import "github.com/supermal/mallpass/cmd/malltwin/cmd"

func main() {
	cmd.Execute()
}
