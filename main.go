package main

import "github.com/Funya-okina/sightseeingLog/cmd"

func main() {
	cmd.Run()
}
