package main

import "oifits/cmd"

func main() {
	cmd.Execute()
}
