package simulate

import (
	"runtime"
	"time"
)

// Credentials identify one account.
type Credentials struct {
	StudentID string
	Password  string
}

// Config holds configuration for a traffic simulation.
type Config struct {
	BaseURL           string        // Base URL of the service
	Students          []Credentials // Accounts that browse the table
	Admin             Credentials   // Account used to read the report
	ActionsPerStudent int           // Table interactions per session
	Workers           int           // Concurrent sessions
	Timeout           time.Duration // HTTP request timeout
	Settle            time.Duration // Wait before reading the report
	Seed              uint64        // Seed for the action plan
}

// DefaultConfig returns settings matching the demo seed data.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:9080",
		Students: []Credentials{
			{StudentID: "s0001", Password: "student"},
			{StudentID: "s0002", Password: "student"},
		},
		Admin:             Credentials{StudentID: "admin", Password: "admin"},
		ActionsPerStudent: 20,
		Workers:           runtime.NumCPU(),
		Timeout:           10 * time.Second,
		Settle:            2 * time.Second,
		Seed:              1,
	}
}
