package importclient

import "os"

// maxWarnings caps the warnings printed without -verbose.
const maxWarnings = 20

// ShowHelp prints usage information for the import tool.
func ShowHelp() {
	os.Stdout.WriteString(`Ekiden Import Tool
==================

Uploads a results file for one member.

File format, one result per line, six fields:
  time,distance,race_name,race_type,date,comment
  0:21:30,5,Park run,road,2025-05-03,windy
  1:32:10.5,21.0975,City half,,,

An empty race_type means road and an empty date means today.

Usage:
  go run ./cmd/import -email you@example.com -password ... -file results.txt

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -email string
        Member email
  -password string
        Member password (default $EKIDEN_PASSWORD)
  -file string
        Results file, "-" reads stdin
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Print every skipped row
  -help
        Show this help message
`)
}
