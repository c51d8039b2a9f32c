// Package version provides the server version and semver comparison helpers
// used by the schema migrator.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the service version. Bump on release.
var Version = "0.3.0"

// DevVersion is the version suffixed for non-prod builds.
var DevVersion = Version + "-dev"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}

// GetMinorVersion returns the "major.minor" prefix of a version string.
func GetMinorVersion(version string) string {
	versionList := strings.Split(version, ".")
	if len(versionList) < 2 {
		return ""
	}
	return versionList[0] + "." + versionList[1]
}

func canonical(version string) string {
	version = strings.TrimSuffix(version, "-dev")
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) >= 0
}

// IsVersionGreaterThan returns true if version is greater than target.
func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) > 0
}
