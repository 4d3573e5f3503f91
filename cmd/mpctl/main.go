package main

import "github.com/sir_venger/multipart_lite/internal/cli"

func main() {
	cli.Execute()
}
