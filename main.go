package main

import "github.com/Mohsinsiddi/w3reg/cmd"

func main() {
	cmd.Execute()
}
