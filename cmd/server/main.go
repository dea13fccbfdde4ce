package main

import "project-management-api/internal/cli"

func main() {
	cli.Execute()
}
