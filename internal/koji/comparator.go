package koji

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	upstreamSourceMissingMessageConstant   = "upstream build source not configured"
	downstreamSourceMissingMessageConstant = "downstream build source not configured"
	registryFailureTemplateConstant        = "failed to resolve builds of %s: %w"
	registryResolvedMessageConstant        = "Resolved koji builds"
	logFieldPackageConstant                = "package"
	logFieldDistributionsConstant          = "distributions"
	logFieldDistributionConstant           = "distribution"
	logFieldUpstreamBuildConstant          = "upstream_build"
	logFieldDownstreamBuildConstant        = "downstream_build"
	distributionMismatchMessageConstant    = "Distribution out of sync"
	missingBuildLabelConstant              = "missing"
)

// ErrUpstreamSourceNotConfigured indicates the comparator was built without an upstream source.
var ErrUpstreamSourceNotConfigured = errors.New(upstreamSourceMissingMessageConstant)

// ErrDownstreamSourceNotConfigured indicates the comparator was built without a downstream source.
var ErrDownstreamSourceNotConfigured = errors.New(downstreamSourceMissingMessageConstant)

// BuildSource lists the builds of a package, newest first.
type BuildSource interface {
	Builds(executionContext context.Context, packageName string) (iter.Seq2[Build, error], error)
}

// ComparatorDependencies enumerates the collaborators of a Comparator.
type ComparatorDependencies struct {
	Upstream   BuildSource
	Downstream BuildSource
	Policy     EndOfLifePolicy
	Logger     *zap.Logger
}

// DistributionStatus pairs the upstream build of a distribution with the downstream build, if any.
type DistributionStatus struct {
	Distribution string
	Upstream     *Build
	Downstream   *Build
	InSync       bool
}

// Report is the outcome of comparing an upstream package with its downstream counterpart.
// Rows follow the upstream distributions in descending order.
type Report struct {
	UpstreamName   string
	DownstreamName string
	Rows           []DistributionStatus
}

// InSync reports whether every upstream distribution has a downstream build with the same EVR.
func (report Report) InSync() bool {
	for _, row := range report.Rows {
		if !row.InSync {
			return false
		}
	}
	return true
}

// DescribeBuild returns the NEVR of the build or "missing" when there is none.
func DescribeBuild(build *Build) string {
	if build == nil {
		return missingBuildLabelConstant
	}
	return build.NEVR
}

// Comparator resolves upstream and downstream registries and compares them per distribution.
type Comparator struct {
	upstream   BuildSource
	downstream BuildSource
	policy     EndOfLifePolicy
	logger     *zap.Logger
}

// NewComparator validates dependencies and constructs a Comparator.
func NewComparator(dependencies ComparatorDependencies) (*Comparator, error) {
	if dependencies.Upstream == nil {
		return nil, ErrUpstreamSourceNotConfigured
	}
	if dependencies.Downstream == nil {
		return nil, ErrDownstreamSourceNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Comparator{
		upstream:   dependencies.Upstream,
		downstream: dependencies.Downstream,
		policy:     dependencies.Policy,
		logger:     logger,
	}, nil
}

// Compare fetches both listings concurrently. Any fetch or parse failure aborts the comparison.
func (comparator *Comparator) Compare(executionContext context.Context, upstreamName string, downstreamName string) (Report, error) {
	var upstreamRegistry Registry
	var downstreamRegistry Registry

	group, groupContext := errgroup.WithContext(executionContext)
	group.Go(func() error {
		registry, resolveError := comparator.resolve(groupContext, comparator.upstream, upstreamName)
		upstreamRegistry = registry
		return resolveError
	})
	group.Go(func() error {
		registry, resolveError := comparator.resolve(groupContext, comparator.downstream, downstreamName)
		downstreamRegistry = registry
		return resolveError
	})
	if waitError := group.Wait(); waitError != nil {
		return Report{}, waitError
	}

	report := Report{UpstreamName: upstreamName, DownstreamName: downstreamName}
	for _, distribution := range upstreamRegistry.Distributions() {
		upstreamBuild, _ := upstreamRegistry.Get(distribution)
		downstreamBuild, _ := downstreamRegistry.Get(distribution)
		row := DistributionStatus{
			Distribution: distribution,
			Upstream:     upstreamBuild,
			Downstream:   downstreamBuild,
			InSync:       CompareEVR(upstreamBuild, downstreamBuild),
		}
		if !row.InSync {
			comparator.logger.Debug(distributionMismatchMessageConstant,
				zap.String(logFieldDistributionConstant, distribution),
				zap.String(logFieldUpstreamBuildConstant, DescribeBuild(upstreamBuild)),
				zap.String(logFieldDownstreamBuildConstant, DescribeBuild(downstreamBuild)),
			)
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

func (comparator *Comparator) resolve(executionContext context.Context, source BuildSource, packageName string) (Registry, error) {
	builds, buildsError := source.Builds(executionContext, packageName)
	if buildsError != nil {
		return Registry{}, fmt.Errorf(registryFailureTemplateConstant, packageName, buildsError)
	}
	registry, registryError := CollectRegistry(builds, comparator.policy)
	if registryError != nil {
		return Registry{}, fmt.Errorf(registryFailureTemplateConstant, packageName, registryError)
	}
	comparator.logger.Info(registryResolvedMessageConstant,
		zap.String(logFieldPackageConstant, packageName),
		zap.Strings(logFieldDistributionsConstant, registry.Distributions()),
	)
	return registry, nil
}
