package main

import "cohort-indexer/cmd"

func main() {
	cmd.Execute()
}
