package utils

// TruncateString returns the string capped at maxLength characters, appending an ellipsis marker when truncation
// occurred.
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}
