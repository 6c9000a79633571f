// Package main is the entry point for the employee onboarding assistant.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	onboarding "github.com/kart-io/onboarding-assistant/internal/onboarding"
)

func main() {
	onboarding.NewApp().Run()
}
