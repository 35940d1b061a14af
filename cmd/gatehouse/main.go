package main

import "github.com/mleone/gatehouse/cmd/gatehouse/cmd"

func main() {
	cmd.Execute()
}
