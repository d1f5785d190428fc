package koji

import (
	"iter"
	"sort"
)

// Registry maps each distribution tag to its latest usable build.
type Registry struct {
	builds map[string]Build
}

// NewRegistry folds builds into a Registry. The first usable build seen for a distribution wins,
// so the input is expected newest first, as koji lists it. Builds that are not complete or closed,
// have no recognizable distribution tag, or target a retired distribution are skipped.
func NewRegistry(builds []Build, policy EndOfLifePolicy) Registry {
	registry := Registry{builds: make(map[string]Build)}
	for _, build := range builds {
		registry.add(build, policy)
	}
	return registry
}

// CollectRegistry folds a build sequence into a Registry, stopping at the first error.
func CollectRegistry(builds iter.Seq2[Build, error], policy EndOfLifePolicy) (Registry, error) {
	registry := Registry{builds: make(map[string]Build)}
	for build, buildError := range builds {
		if buildError != nil {
			return Registry{}, buildError
		}
		registry.add(build, policy)
	}
	return registry, nil
}

func (registry Registry) add(build Build, policy EndOfLifePolicy) {
	if !build.Status.Usable() || !build.HasDist || policy.IsEndOfLife(build.Dist) {
		return
	}
	if _, alreadyRegistered := registry.builds[build.Dist]; alreadyRegistered {
		return
	}
	registry.builds[build.Dist] = build
}

// Get returns the build registered for the distribution tag.
func (registry Registry) Get(dist string) (*Build, bool) {
	build, found := registry.builds[dist]
	if !found {
		return nil, false
	}
	return &build, true
}

// Len returns the number of registered distributions.
func (registry Registry) Len() int {
	return len(registry.builds)
}

// Distributions returns the registered distribution tags in descending order.
func (registry Registry) Distributions() []string {
	distributions := make([]string, 0, len(registry.builds))
	for dist := range registry.builds {
		distributions = append(distributions, dist)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(distributions)))
	return distributions
}
