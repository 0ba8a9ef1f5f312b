package models

import "fmt"

// Source identifies an external requirement source (ticketing system).
type Source string

const (
	SourceJira        Source = "jira"
	SourceAzureDevOps Source = "azure-devops"
)

// ParseSource validates s as a requirement source.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceJira, SourceAzureDevOps:
		return Source(s), nil
	case "ado", "azure":
		return SourceAzureDevOps, nil
	default:
		return "", fmt.Errorf("unknown requirement source %q (expected %q or %q)", s, SourceJira, SourceAzureDevOps)
	}
}

// FormatRequirement joins a summary and description into the single text
// block the pipeline works on.
func FormatRequirement(summary, description string) string {
	return fmt.Sprintf("SUMMARY: %s\nDESC: %s", summary, description)
}
