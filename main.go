package main

import "github.com/iksnae/thread-harvest/cmd"

func main() {
	cmd.Execute()
}
