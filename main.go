package main

import "github.com/sergev/amigatrk/cmd"

func main() {
	cmd.Execute()
}
