// Package main is the anomaly-service entry point.
package main

import (
	"log"

	"github.com/Capstone-project-team7/Back/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
