package main

import "github.com/dbsmedya/pagetable/cmd/pagetable/cmd"

func main() {
	cmd.Execute()
}
