package main

import "github.com/Digital-Shane/tvshelf/internal/cmd"

func main() {
	cmd.Execute()
}
