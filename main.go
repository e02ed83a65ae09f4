package main

import "github.com/user/vulnrecord/cmd"

func main() {
	cmd.Execute()
}
