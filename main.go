package main

import "github.com/vinodjarare/shopgraph/internal/app"

func main() {
	app.Execute()
}
