package main

import "github.com/productsiksha/pmsiksha/internal/commands"

func main() {
	commands.Execute()
}
