package main

import "github.com/rpgo/lifecastor/cmd"

func main() {
	cmd.Execute()
}
