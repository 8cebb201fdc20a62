package main

import "github.com/goplus/usecmake/cmd/usecmake/internal"

func main() {
	internal.Execute()
}
