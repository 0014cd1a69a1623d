package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("start")
	defer fmt.Println("deferred")

	os.Exit(1) // want "avoid direct os.Exit call in main function of main package"

	exit := func() {
		os.Exit(2)
	}
	exit()
}

func helper() {
	os.Exit(3)
}
