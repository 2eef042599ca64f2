package main

import (
	"os"
	"strings"

	"github.com/alexisbeaulieu97/routekit/internal/plugin"
)

var ciEnvVars = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_HOME",
}

func isCIEnvironment() bool {
	for _, key := range ciEnvVars {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" && strings.ToLower(value) != "false" && value != "0" {
			return true
		}
	}
	return false
}

// defaultConflictPolicy is used when the configuration names no policy. CI runs
// reject conflicts so a broken manifest fails the build.
func defaultConflictPolicy() plugin.ConflictPolicy {
	if isCIEnvironment() {
		return plugin.PolicyReject
	}
	return plugin.PolicyQuarantine
}
