package main

import "github.com/maxvaer/urlbypass/cmd"

func main() {
	cmd.Execute()
}
