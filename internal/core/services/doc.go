// Package services implements the driving port interfaces.
// Services contain the matching engine and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on domain types and port interfaces, never on adapters.
package services
