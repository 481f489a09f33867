package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the HuggingFace hub.
const DefaultBaseURL = "https://huggingface.co"

// HTTPSource fetches files from a HuggingFace-compatible hub.
// Redirects are followed by the client.
type HTTPSource struct {
	BaseURL string
	// Token, when set, is sent as a bearer token.
	Token  string
	Client *http.Client
}

// NewHTTPSource creates a source for baseURL (DefaultBaseURL when empty).
func NewHTTPSource(baseURL, token string) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  http.DefaultClient,
	}
}

// URL returns the resolve URL of a repository file.
func (s *HTTPSource) URL(repo Repo, name string) string {
	return fmt.Sprintf("%s/%s/%s/resolve/main/%s",
		s.BaseURL, url.PathEscape(repo.Owner), url.PathEscape(repo.Name), url.PathEscape(name))
}

// Get implements Source.
func (s *HTTPSource) Get(ctx context.Context, repo Repo, name string, w io.Writer) error {
	u := s.URL(repo, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, URL: u}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading %s: %w", u, err)
	}
	return nil
}
