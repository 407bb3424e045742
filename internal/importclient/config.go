package importclient

import "time"

// Config holds the settings of one import run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Email    string        // Member email
	Password string        // Member password
	File     string        // Import file, "-" reads stdin
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Print every warning
}

// Session is the part of the login response the client needs.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Report is the server's import summary.
type Report struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}

// Record is one row of the member's own result list.
type Record struct {
	ID       string  `json:"id"`
	Time     string  `json:"time"`
	Distance float64 `json:"distance"`
	RaceName string  `json:"race_name"`
	Date     string  `json:"date"`
}

// APIError is the error body every endpoint returns.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
