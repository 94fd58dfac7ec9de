// Package ciutil detects whether the code is running under a CI provider.
package ciutil

import "os"

// Variables set by common CI providers.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"
)

var ciVars = []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI}

// IsCI reports whether any known CI variable is set.
func IsCI() bool {
	for _, name := range ciVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
