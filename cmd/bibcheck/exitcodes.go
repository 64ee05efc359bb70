package main

// Exit codes
const (
	ExitSuccess     = 0 // Success, every entry correct
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config or rules file)
	ExitDataError   = 3 // Data error (unreadable or malformed bibliography)
	ExitIssues      = 4 // Check completed and found incorrect entries or duplicate keys
)
