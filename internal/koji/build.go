package koji

import (
	"strings"
)

const (
	nevrSeparatorConstant             = "-"
	epochSeparatorConstant            = ":"
	releaseComponentSeparatorConstant = "."
	missingHyphenMessageConstant      = "expected name-[epoch:]version-release"
	emptyComponentMessageConstant     = "name, version and release must not be empty"
	emptyEpochMessageConstant         = "epoch must not be empty when a colon is present"
	emptyStatusMessageConstant        = "build status must not be empty"
)

// BuildStatus is the koji state of a build.
type BuildStatus string

// Known build states. Koji may show others, such as building; they are kept verbatim.
const (
	BuildStatusComplete BuildStatus = "complete"
	BuildStatusClosed   BuildStatus = "closed"
	BuildStatusFailed   BuildStatus = "failed"
	BuildStatusCanceled BuildStatus = "canceled"
	BuildStatusDeleted  BuildStatus = "deleted"
	BuildStatusFree     BuildStatus = "free"
	BuildStatusOpen     BuildStatus = "open"
	BuildStatusBuilding BuildStatus = "building"
)

var knownBuildStatuses = map[BuildStatus]struct{}{
	BuildStatusComplete: {},
	BuildStatusClosed:   {},
	BuildStatusFailed:   {},
	BuildStatusCanceled: {},
	BuildStatusDeleted:  {},
	BuildStatusFree:     {},
	BuildStatusOpen:     {},
	BuildStatusBuilding: {},
}

// ParseBuildStatus converts the state title shown by koji into a BuildStatus.
// Only an empty title is rejected; unrecognized states are returned as-is and are never usable.
func ParseBuildStatus(value string) (BuildStatus, error) {
	status := BuildStatus(strings.ToLower(strings.TrimSpace(value)))
	if len(status) == 0 {
		return "", ParseError{Input: value, Message: emptyStatusMessageConstant}
	}
	return status, nil
}

// Known reports whether koji documents this state.
func (status BuildStatus) Known() bool {
	_, known := knownBuildStatuses[status]
	return known
}

// Usable reports whether builds in this state may represent a distribution.
func (status BuildStatus) Usable() bool {
	return status == BuildStatusComplete || status == BuildStatusClosed
}

// distributionPrefixes lists the release component prefixes recognized as distribution tags.
var distributionPrefixes = []string{"fc", "el", "epel"}

// NEVR holds the components of a name-[epoch:]version-release identifier.
type NEVR struct {
	Name     string
	Epoch    string
	HasEpoch bool
	Version  string
	Release  string
}

// EVR is the epoch-version-release triple used for version equality.
type EVR struct {
	Epoch    string
	HasEpoch bool
	Version  string
	Release  string
}

// Build is a single koji build. All derived fields are computed by NewBuild.
type Build struct {
	NEVR     string
	ID       int64
	Status   BuildStatus
	Name     string
	Epoch    string
	HasEpoch bool
	Version  string
	Release  string
	Dist     string
	HasDist  bool
}

// NewBuild parses nevr and derives the identity and distribution tag of the build.
func NewBuild(nevr string, identifier int64, status BuildStatus) (Build, error) {
	components, splitError := SplitNEVR(nevr)
	if splitError != nil {
		return Build{}, splitError
	}
	dist, hasDist := GuessDist(components.Release)
	return Build{
		NEVR:     strings.TrimSpace(nevr),
		ID:       identifier,
		Status:   status,
		Name:     components.Name,
		Epoch:    components.Epoch,
		HasEpoch: components.HasEpoch,
		Version:  components.Version,
		Release:  components.Release,
		Dist:     dist,
		HasDist:  hasDist,
	}, nil
}

// String returns the NEVR of the build.
func (build Build) String() string {
	return build.NEVR
}

// EVR returns the version identity of the build.
func (build Build) EVR() EVR {
	return EVR{Epoch: build.Epoch, HasEpoch: build.HasEpoch, Version: build.Version, Release: build.Release}
}

// SplitNEVR splits a name-[epoch:]version-release string at its two rightmost hyphens.
// Package names may contain hyphens; versions and releases may not.
func SplitNEVR(nevr string) (NEVR, error) {
	trimmed := strings.TrimSpace(nevr)

	releaseSeparatorIndex := strings.LastIndex(trimmed, nevrSeparatorConstant)
	if releaseSeparatorIndex < 0 {
		return NEVR{}, ParseError{Input: nevr, Message: missingHyphenMessageConstant}
	}
	release := trimmed[releaseSeparatorIndex+1:]
	nameAndVersion := trimmed[:releaseSeparatorIndex]

	versionSeparatorIndex := strings.LastIndex(nameAndVersion, nevrSeparatorConstant)
	if versionSeparatorIndex < 0 {
		return NEVR{}, ParseError{Input: nevr, Message: missingHyphenMessageConstant}
	}
	name := nameAndVersion[:versionSeparatorIndex]
	version := nameAndVersion[versionSeparatorIndex+1:]

	components := NEVR{Name: name, Version: version, Release: release}
	if epoch, versionWithoutEpoch, hasEpoch := strings.Cut(version, epochSeparatorConstant); hasEpoch {
		if len(epoch) == 0 {
			return NEVR{}, ParseError{Input: nevr, Message: emptyEpochMessageConstant}
		}
		components.Epoch = epoch
		components.HasEpoch = true
		components.Version = versionWithoutEpoch
	}

	if len(components.Name) == 0 || len(components.Version) == 0 || len(components.Release) == 0 {
		return NEVR{}, ParseError{Input: nevr, Message: emptyComponentMessageConstant}
	}
	return components, nil
}

// GuessDist returns the first release component that starts with a recognized distribution prefix.
func GuessDist(release string) (string, bool) {
	for _, component := range strings.Split(release, releaseComponentSeparatorConstant) {
		for _, prefix := range distributionPrefixes {
			if strings.HasPrefix(component, prefix) {
				return component, true
			}
		}
	}
	return "", false
}

// CompareEVR reports whether both builds are present and share epoch, version and release.
// Names are not compared.
func CompareEVR(first *Build, second *Build) bool {
	if first == nil || second == nil {
		return false
	}
	return first.EVR() == second.EVR()
}
