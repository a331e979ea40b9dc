package main

import "github.com/charleschow/courtside/internal/process"

func main() {
	process.RunServer()
}
