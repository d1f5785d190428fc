package koji

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
)

const (
	searchEndpointConstant          = "search"
	searchMatchFieldConstant        = "match"
	searchMatchGlobConstant         = "glob"
	searchTypeFieldConstant         = "type"
	searchTypePackageConstant       = "package"
	searchTermsFieldConstant        = "terms"
	formContentTypeConstant         = "application/x-www-form-urlencoded"
	contentTypeHeaderConstant       = "Content-Type"
	urlPathSeparatorConstant        = "/"
	maximumResponseBytesConstant    = 32 << 20
	responseTooLargeMessageConstant = "response exceeds size limit"
	responseLimitTemplateConstant   = "%w of %d bytes"
)

// ErrResponseTooLarge indicates a search page larger than the client accepts.
var ErrResponseTooLarge = errors.New(responseTooLargeMessageConstant)

// Client fetches package search pages from a koji web interface.
// MaximumResponseBytes defaults to 32 MiB when zero.
type Client struct {
	BaseURL              string
	HTTPClient           *http.Client
	MaximumResponseBytes int64
}

// NewClient constructs a Client for the koji web interface rooted at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{BaseURL: baseURL, HTTPClient: httpClient}
}

// SearchURL returns the search endpoint for the configured base URL.
func (client *Client) SearchURL() string {
	baseURL := client.BaseURL
	if !strings.HasSuffix(baseURL, urlPathSeparatorConstant) {
		baseURL += urlPathSeparatorConstant
	}
	return baseURL + searchEndpointConstant
}

// SearchPackage posts a package glob search for packageName and returns the response page.
func (client *Client) SearchPackage(executionContext context.Context, packageName string) (string, error) {
	searchURL := client.SearchURL()
	formValues := url.Values{}
	formValues.Set(searchMatchFieldConstant, searchMatchGlobConstant)
	formValues.Set(searchTypeFieldConstant, searchTypePackageConstant)
	formValues.Set(searchTermsFieldConstant, packageName)

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodPost, searchURL, strings.NewReader(formValues.Encode()))
	if requestError != nil {
		return "", FetchError{URL: searchURL, Cause: requestError}
	}
	request.Header.Set(contentTypeHeaderConstant, formContentTypeConstant)

	httpClient := client.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	response, responseError := httpClient.Do(request)
	if responseError != nil {
		return "", FetchError{URL: searchURL, Cause: responseError}
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return "", FetchError{URL: searchURL, StatusCode: response.StatusCode}
	}

	responseLimit := client.MaximumResponseBytes
	if responseLimit <= 0 {
		responseLimit = maximumResponseBytesConstant
	}
	body, readError := io.ReadAll(io.LimitReader(response.Body, responseLimit+1))
	if readError != nil {
		return "", FetchError{URL: searchURL, StatusCode: response.StatusCode, Cause: readError}
	}
	if int64(len(body)) > responseLimit {
		return "", FetchError{URL: searchURL, StatusCode: response.StatusCode, Cause: fmt.Errorf(responseLimitTemplateConstant, ErrResponseTooLarge, responseLimit)}
	}
	return string(body), nil
}

// Builds fetches the search page for packageName and returns its builds in page order.
func (client *Client) Builds(executionContext context.Context, packageName string) (iter.Seq2[Build, error], error) {
	page, searchError := client.SearchPackage(executionContext, packageName)
	if searchError != nil {
		return nil, searchError
	}
	return ParseBuilds(page), nil
}
