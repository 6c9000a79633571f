// Package model defines the persistent entities and API payloads of the
// onboarding assistant.
package model
