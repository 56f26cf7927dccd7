package main

import (
	"qfmwidget/cmd"
)

func main() {
	cmd.Execute()
}
