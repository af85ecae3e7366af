// Package version holds build version information.
package version

import "fmt"

// Version is the CLI version, overridden at build time via
// -ldflags "-X github.com/dayplan/dayplan-cli/internal/version.Version=...".
var Version = "dev"

// UserAgent returns the User-Agent header value for API requests.
func UserAgent() string {
	return fmt.Sprintf("dayplan-cli/%s", Version)
}
