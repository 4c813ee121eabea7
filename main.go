package main

import "github.com/user/framereview/cmd"

func main() {
	cmd.Execute()
}
