// Package versions provides version constants for skylex and the compatibility
// check applied to configuration files written by other releases.
package versions

import (
	"github.com/Masterminds/semver/v3"
)

// Version is the current version of skylex.
// The version follows semantic versioning (MAJOR.MINOR.PATCH).
const Version = "0.1.0-alpha.1"

// ConfigFormatVersion is written into every new configuration file.
const ConfigFormatVersion = "0.1.0"

// configConstraint accepts any config format with the same major and minor version.
var configConstraint *semver.Constraints

func init() {
	var err error
	configConstraint, err = semver.NewConstraint("~" + ConfigFormatVersion)
	if err != nil {
		panic(err)
	}
}

// IsConfigCompatible reports whether a configuration file of the given format
// version can be read by this build. Returns false for invalid version strings.
func IsConfigCompatible(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return configConstraint.Check(v)
}

// UserAgent is the User-Agent header sent with every request.
func UserAgent() string {
	return "skylex/" + Version
}
