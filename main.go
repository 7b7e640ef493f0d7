package main

import "github.com/vietdv277/s3du/cmd"

func main() {
	cmd.Execute()
}
