package main

import (
	"fmt"
	"os"
)

func run() error { return nil }

func helper() {
	os.Exit(2)
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1) // want "avoid direct os.Exit call in main function of main package"
	}
	defer func() {
		os.Exit(0) // want "avoid direct os.Exit call in main function of main package"
	}()
	helper()
}
