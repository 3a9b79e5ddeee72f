package main

import "github.com/inovacc/autosync/cmd"

func main() {
	cmd.Execute()
}
