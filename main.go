package main

import "github.com/KaramelBytes/clusterloom-cli/cmd"

func main() {
	cmd.Execute()
}
