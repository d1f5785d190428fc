package koji_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fwsync/fwsync/internal/koji"
)

func TestNewRegistryFirstSeenWins(testInstance *testing.T) {
	builds := []koji.Build{
		mustBuild(testInstance, "a-123-2.fc28", koji.BuildStatusFailed),
		mustBuild(testInstance, "a-123-1.fc28", koji.BuildStatusComplete),
		mustBuild(testInstance, "a-123-1.fc20", koji.BuildStatusComplete),
		mustBuild(testInstance, "a-123-1.epel7", koji.BuildStatusComplete),
		mustBuild(testInstance, "a-122-1.epel7", koji.BuildStatusComplete),
	}

	registry := koji.NewRegistry(builds, koji.DefaultEndOfLifePolicy())

	require.Equal(testInstance, 2, registry.Len())
	fedoraBuild, fedoraFound := registry.Get("fc28")
	require.True(testInstance, fedoraFound)
	require.Equal(testInstance, "a-123-1.fc28", fedoraBuild.NEVR)
	epelBuild, epelFound := registry.Get("epel7")
	require.True(testInstance, epelFound)
	require.Equal(testInstance, "a-123-1.epel7", epelBuild.NEVR)
	_, retiredFound := registry.Get("fc20")
	require.False(testInstance, retiredFound)
}

func TestNewRegistrySkipsUnclassifiedBuilds(testInstance *testing.T) {
	registry := koji.NewRegistry([]koji.Build{
		mustBuild(testInstance, "a-1-1.mga9", koji.BuildStatusComplete),
		mustBuild(testInstance, "a-1-1.fc40", koji.BuildStatusClosed),
	}, koji.DefaultEndOfLifePolicy())

	require.Equal(testInstance, []string{"fc40"}, registry.Distributions())
}

func TestRegistryDistributionsAreDescending(testInstance *testing.T) {
	registry := koji.NewRegistry([]koji.Build{
		mustBuild(testInstance, "a-1-1.fc39", koji.BuildStatusComplete),
		mustBuild(testInstance, "a-1-1.el9", koji.BuildStatusComplete),
		mustBuild(testInstance, "a-1-1.fc40", koji.BuildStatusComplete),
	}, koji.DefaultEndOfLifePolicy())

	require.Equal(testInstance, []string{"fc40", "fc39", "el9"}, registry.Distributions())
}

func TestEmptyRegistry(testInstance *testing.T) {
	registry, collectError := koji.CollectRegistry(koji.ParseBuilds(""), koji.DefaultEndOfLifePolicy())
	require.NoError(testInstance, collectError)
	require.Zero(testInstance, registry.Len())
	require.Empty(testInstance, registry.Distributions())
	_, found := registry.Get("fc40")
	require.False(testInstance, found)
}

func TestCollectRegistryPropagatesParseErrors(testInstance *testing.T) {
	page := renderListing([]listingRow{{identifier: 1, nevr: "a-1-1.fc40"}})
	_, collectError := koji.CollectRegistry(koji.ParseBuilds(page), koji.DefaultEndOfLifePolicy())
	require.Error(testInstance, collectError)
	require.IsType(testInstance, koji.ParseError{}, collectError)
}
