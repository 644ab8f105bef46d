package main

import "github.com/eedm-api/student-services/cmd"

func main() {
	cmd.Execute()
}
