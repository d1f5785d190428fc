package koji

import (
	"strconv"
	"strings"
)

const (
	defaultEndOfLifePrefixConstant    = "fc"
	defaultEndOfLifeThresholdConstant = 25
)

// EndOfLifePolicy marks distribution tags of the form <Prefix><number> as retired when the number
// does not exceed Threshold. Tags outside that scheme are never retired.
type EndOfLifePolicy struct {
	Prefix    string
	Threshold int
}

// DefaultEndOfLifePolicy retires Fedora releases up to and including fc25.
func DefaultEndOfLifePolicy() EndOfLifePolicy {
	return EndOfLifePolicy{Prefix: defaultEndOfLifePrefixConstant, Threshold: defaultEndOfLifeThresholdConstant}
}

// IsEndOfLife reports whether the distribution tag is retired under the policy.
func (policy EndOfLifePolicy) IsEndOfLife(tag string) bool {
	if len(policy.Prefix) == 0 || !strings.HasPrefix(tag, policy.Prefix) {
		return false
	}
	releaseNumber, conversionError := strconv.Atoi(strings.TrimPrefix(tag, policy.Prefix))
	if conversionError != nil {
		return false
	}
	return releaseNumber <= policy.Threshold
}
