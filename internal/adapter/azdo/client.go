// Package azdo talks to the Azure DevOps Git REST API: file snapshots and
// pull request comment threads.
package azdo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	llmhttp "github.com/difflens/difflens/internal/adapter/llm/http"
)

const (
	providerName   = "azdo"
	defaultTimeout = 30 * time.Second
)

// ErrItemNotFound marks a file that does not exist at the requested ref.
var ErrItemNotFound = errors.New("item not found")

// Client is an HTTP client for one repository's slice of the Azure DevOps
// Git API. baseURL is the organization URL, e.g.
// https://dev.azure.com/myorg.
type Client struct {
	baseURL    string
	project    string
	repository string
	token      string
	httpClient *http.Client
	retryConf  llmhttp.RetryConfig
}

// NewClient creates a client authenticated with the given personal access
// token.
func NewClient(orgURL, project, repository, token string) *Client {
	return &Client{
		baseURL:    orgURL,
		project:    project,
		repository: repository,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf:  llmhttp.DefaultRetryConfig(),
	}
}

// SetBaseURL sets a custom organization URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetMaxRetries sets the maximum number of retry attempts.
func (c *Client) SetMaxRetries(maxRetries int) {
	c.retryConf.MaxRetries = maxRetries
}

// SetInitialBackoff sets the initial backoff duration for retries.
func (c *Client) SetInitialBackoff(backoff time.Duration) {
	c.retryConf.InitialBackoff = backoff
}

// GetItem fetches one file's content at the given ref. Returns
// ErrItemNotFound when the file does not exist there.
func (c *Client) GetItem(ctx context.Context, path, ref string) (Item, error) {
	q := url.Values{}
	q.Set("path", path)
	q.Set("versionDescriptor.version", ref)
	q.Set("versionDescriptor.versionType", "commit")
	q.Set("includeContent", "true")
	q.Set("api-version", apiVersion)

	u := fmt.Sprintf("%s/%s/_apis/git/repositories/%s/items?%s",
		c.baseURL, url.PathEscape(c.project), url.PathEscape(c.repository), q.Encode())

	var item Item
	err := c.doJSON(ctx, "GET", u, nil, &item)
	return item, err
}

// ListThreads fetches all comment threads on the pull request.
func (c *Client) ListThreads(ctx context.Context, pullRequestID int) ([]Thread, error) {
	u := fmt.Sprintf("%s/%s/_apis/git/repositories/%s/pullRequests/%d/threads?api-version=%s",
		c.baseURL, url.PathEscape(c.project), url.PathEscape(c.repository), pullRequestID, apiVersion)

	var list ThreadList
	if err := c.doJSON(ctx, "GET", u, nil, &list); err != nil {
		return nil, err
	}
	return list.Value, nil
}

// CreateThread posts a new comment thread on the pull request. A nil
// threadContext creates a general (file-less) thread.
func (c *Client) CreateThread(ctx context.Context, pullRequestID int, threadContext *ThreadContext, content string) (Thread, error) {
	reqBody := CreateThreadRequest{
		Status:        threadStatusActive,
		ThreadContext: threadContext,
		Comments: []NewComment{{
			ParentCommentID: 0,
			Content:         content,
			CommentType:     commentTypeText,
		}},
	}

	u := fmt.Sprintf("%s/%s/_apis/git/repositories/%s/pullRequests/%d/threads?api-version=%s",
		c.baseURL, url.PathEscape(c.project), url.PathEscape(c.repository), pullRequestID, apiVersion)

	var created Thread
	err := c.doJSON(ctx, "POST", u, reqBody, &created)
	return created, err
}

// doJSON executes one JSON request with retry, decoding the response into
// out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, url string, in, out interface{}) error {
	var jsonData []byte
	if in != nil {
		var err error
		jsonData, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var body []byte
	err := llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if jsonData != nil {
			reader = bytes.NewReader(jsonData)
		}
		req, reqErr := http.NewRequestWithContext(ctx, method, url, reader)
		if reqErr != nil {
			return &llmhttp.Error{
				Type:     llmhttp.ErrTypeUnknown,
				Message:  reqErr.Error(),
				Provider: providerName,
			}
		}
		req.Header.Set("Accept", "application/json")
		if jsonData != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Authorization", "Basic "+basicPAT(c.token))

		resp, callErr := c.httpClient.Do(req)
		if callErr != nil {
			return llmhttp.NewTimeoutError(providerName, callErr.Error())
		}
		defer resp.Body.Close()

		var readErr error
		body, readErr = io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("failed to read response: %w", readErr)
		}

		if resp.StatusCode == http.StatusNotFound {
			return ErrItemNotFound
		}
		if resp.StatusCode >= 400 {
			var apiErr ErrorResponse
			msg := string(body)
			if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
				msg = apiErr.Message
			}
			return llmhttp.MapStatusError(providerName, resp.StatusCode, msg)
		}
		return nil
	}, c.retryConf)
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// basicPAT encodes a personal access token for Basic auth; the username is
// left empty as the API requires.
func basicPAT(token string) string {
	return base64.StdEncoding.EncodeToString([]byte(":" + token))
}
