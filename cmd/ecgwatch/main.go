package main

import "github.com/effieaponniah/Arrythmia-Detect/internal/cli"

func main() {
	cli.Execute()
}
