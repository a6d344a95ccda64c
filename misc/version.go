// Package misc keeps program identity shared by everything else.
package misc

import "strings"

const appName = "statsnap"

// set by linker
var (
	version = "0.1.0-dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return strings.TrimPrefix(version, "v")
}

func GetGitHash() string {
	return gitHash
}
