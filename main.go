package main

import "mailsort/cmd"

func main() {
	cmd.Execute()
}
