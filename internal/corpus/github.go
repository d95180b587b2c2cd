// Package corpus talks to the remote source-of-truth for reference
// templates: a GitHub repository queried through the tree and contents APIs.
package corpus

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"profilegen/internal/core/errors"
	"profilegen/internal/shared/util"
)

const defaultBaseURL = "https://api.github.com"

// Config wires an explicit client instead of ambient globals so tests can
// substitute a stub server.
type Config struct {
	Repo         string // owner/name
	Branch       string
	Token        string
	BaseURL      string
	ListTimeout  time.Duration
	FetchTimeout time.Duration
	Limiter      *util.Limiter
}

type Client struct {
	repo         string
	branch       string
	token        string
	baseURL      string
	listTimeout  time.Duration
	fetchTimeout time.Duration
	limiter      *util.Limiter
	http         *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	listTimeout := cfg.ListTimeout
	if listTimeout <= 0 {
		listTimeout = 10 * time.Second
	}
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 5 * time.Second
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = util.NewLimiter(5, 5)
	}

	return &Client{
		repo:         cfg.Repo,
		branch:       cfg.Branch,
		token:        cfg.Token,
		baseURL:      baseURL,
		listTimeout:  listTimeout,
		fetchTimeout: fetchTimeout,
		limiter:      limiter,
		http:         &http.Client{},
	}
}

type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	} `json:"tree"`
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// ListPaths fetches the full recursive tree of the corpus branch and returns
// the paths matching prefix and suffix, in listing order. Any failure here is
// a listing failure: the caller cannot compute a backlog without it.
func (c *Client) ListPaths(ctx context.Context, prefix, suffix string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/git/trees/%s?recursive=1", c.baseURL, c.repo, c.branch)

	body, err := c.get(ctx, endpoint, c.listTimeout)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSyncListingFailure, "fetch corpus tree")
	}

	var tree treeResponse
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, errors.Wrap(err, errors.CodeSyncListingFailure, "decode corpus tree")
	}

	paths := make([]string, 0, len(tree.Tree))
	for _, entry := range tree.Tree {
		if entry.Type == "tree" {
			continue
		}
		if !strings.HasPrefix(entry.Path, prefix) || !strings.HasSuffix(entry.Path, suffix) {
			continue
		}
		paths = append(paths, entry.Path)
	}
	return paths, nil
}

// FetchContent fetches one template body via the contents API and decodes the
// base64 payload. Failures are per-item and skippable by the caller.
func (c *Client) FetchContent(ctx context.Context, path string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s",
		c.baseURL, c.repo, escapePath(path), url.QueryEscape(c.branch))

	body, err := c.get(ctx, endpoint, c.fetchTimeout)
	if err != nil {
		return "", errors.AddContext(
			errors.Wrap(err, errors.CodeSyncItemFailure, "fetch template content"),
			errors.CtxPath, path)
	}

	var content contentResponse
	if err := json.Unmarshal(body, &content); err != nil {
		return "", errors.Wrap(err, errors.CodeSyncItemFailure, "decode template content")
	}
	if content.Encoding != "" && content.Encoding != "base64" {
		return "", errors.New(errors.CodeSyncItemFailure,
			fmt.Sprintf("unsupported content encoding %q", content.Encoding))
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeSyncItemFailure, "decode template payload")
	}
	return string(raw), nil
}

func (c *Client) get(ctx context.Context, endpoint string, timeout time.Duration) ([]byte, error) {
	if err := c.limiter.Wait(ctx, 1); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	return io.ReadAll(resp.Body)
}

func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
