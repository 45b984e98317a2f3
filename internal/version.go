package internal

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	snapshotVersion   = regexp.MustCompile(`^\d\dw\d\d[a-z]$`)
	preReleaseVersion = regexp.MustCompile(`^\d+\.\d+(\.\d+)?-(pre|rc)\d+$`)
)

// FullVersion is the published version, <version>+<game version>. Builds
// without any publishing credential are tagged -local.
func (p *Project) FullVersion() string {
	v := p.Version + "+" + p.Game.Version
	if p.Local() {
		v += "-local"
	}
	return v
}

func (p *Project) Local() bool {
	return p.Publish.CurseForgeToken == "" && p.Publish.ModrinthToken == "" && p.Publish.Maven == ""
}

// IsGameVersionNonRelease reports snapshots (24w14a) and pre-releases or
// release candidates (1.21-pre1, 1.21-rc1).
func (p *Project) IsGameVersionNonRelease() bool {
	return snapshotVersion.MatchString(p.Game.Version) || preReleaseVersion.MatchString(p.Game.Version)
}

// GameVersionString is the major.minor game version, or the whole version
// for non-release versions.
func (p *Project) GameVersionString() string {
	if p.IsGameVersionNonRelease() {
		return p.Game.Version
	}
	parts := strings.SplitN(p.Game.Version, ".", 3)
	if len(parts) < 2 {
		return p.Game.Version
	}
	return parts[0] + "." + parts[1]
}

// VersionType is the release channel: alpha, beta or release.
func (p *Project) VersionType() string {
	pre := p.Version
	if v := "v" + p.Version; semver.IsValid(v) {
		pre = semver.Prerelease(v)
	}
	switch {
	case p.IsGameVersionNonRelease() || strings.Contains(pre, "-alpha."):
		return "alpha"
	case strings.Contains(pre, "-beta."):
		return "beta"
	default:
		return "release"
	}
}
