package main

import "github.com/supermal/mallpass/cmd/mallctl/cmd"

func main() {
	cmd.Execute()
}
