package main

import "github.com/oshokin/version-sync/cmd/version-sync/cmd"

func main() {
	cmd.Execute()
}
