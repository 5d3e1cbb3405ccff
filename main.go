package main

import "github.com/frahmantamala/backoffice/cmd"

func main() {
	cmd.Execute()
}
