package main

import "github.com/sunipkm/devsync/cmd"

func main() {
	cmd.Execute()
}
