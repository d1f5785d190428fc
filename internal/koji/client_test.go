package koji_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fwsync/fwsync/internal/koji"
)

func TestClientSearchPackagePostsForm(testInstance *testing.T) {
	page := renderListing([]listingRow{{identifier: 10, nevr: "chromium-124.0-1.fc40", status: "complete"}})

	var receivedMethod string
	var receivedPath string
	var receivedForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		receivedMethod = request.Method
		receivedPath = request.URL.Path
		require.NoError(testInstance, request.ParseForm())
		receivedForm = map[string]string{
			"match": request.PostForm.Get("match"),
			"type":  request.PostForm.Get("type"),
			"terms": request.PostForm.Get("terms"),
		}
		_, _ = responseWriter.Write([]byte(page))
	}))
	defer server.Close()

	client := koji.NewClient(server.URL+"/koji", server.Client())
	builds, buildsError := client.Builds(context.Background(), "chromium")
	require.NoError(testInstance, buildsError)

	var nevrs []string
	for build, parseError := range builds {
		require.NoError(testInstance, parseError)
		nevrs = append(nevrs, build.NEVR)
	}

	require.Equal(testInstance, http.MethodPost, receivedMethod)
	require.Equal(testInstance, "/koji/search", receivedPath)
	require.Equal(testInstance, map[string]string{"match": "glob", "type": "package", "terms": "chromium"}, receivedForm)
	require.Equal(testInstance, []string{"chromium-124.0-1.fc40"}, nevrs)
}

func TestClientSearchPackageRejectsUnsuccessfulStatus(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, _ *http.Request) {
		responseWriter.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := koji.NewClient(server.URL+"/koji/", server.Client())
	_, searchError := client.SearchPackage(context.Background(), "chromium")

	var fetchError koji.FetchError
	require.ErrorAs(testInstance, searchError, &fetchError)
	require.Equal(testInstance, http.StatusServiceUnavailable, fetchError.StatusCode)
	require.Equal(testInstance, server.URL+"/koji/search", fetchError.URL)
}

func TestClientSearchPackageReportsTransportFailure(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	serverURL := server.URL
	server.Close()

	_, searchError := koji.NewClient(serverURL+"/koji/", nil).SearchPackage(context.Background(), "chromium")

	var fetchError koji.FetchError
	require.ErrorAs(testInstance, searchError, &fetchError)
	require.Error(testInstance, fetchError.Cause)
	require.Zero(testInstance, fetchError.StatusCode)
}

func TestClientSearchPackageRejectsOversizedPage(testInstance *testing.T) {
	page := renderListing([]listingRow{{identifier: 10, nevr: "chromium-124.0-1.fc40", status: "complete"}})
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, _ *http.Request) {
		_, _ = responseWriter.Write([]byte(page))
	}))
	defer server.Close()

	exactClient := koji.NewClient(server.URL, server.Client())
	exactClient.MaximumResponseBytes = int64(len(page))
	fetchedPage, searchError := exactClient.SearchPackage(context.Background(), "chromium")
	require.NoError(testInstance, searchError)
	require.Equal(testInstance, page, fetchedPage)

	truncatingClient := koji.NewClient(server.URL, server.Client())
	truncatingClient.MaximumResponseBytes = int64(len(page) - 1)
	_, searchError = truncatingClient.SearchPackage(context.Background(), "chromium")

	var fetchError koji.FetchError
	require.ErrorAs(testInstance, searchError, &fetchError)
	require.ErrorIs(testInstance, searchError, koji.ErrResponseTooLarge)
	require.Equal(testInstance, http.StatusOK, fetchError.StatusCode)
}
