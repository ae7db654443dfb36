package main

import "replyflow/internal/cmd"

func main() {
	cmd.Run()
}
