package main

import "github.com/KaramelBytes/dashloom/cmd"

func main() {
	cmd.Execute()
}
