package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultGitHubAPI is the public GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

// GitHub creates repositories through the GitHub REST API.
type GitHub struct {
	apiURL string
	client *http.Client
}

// NewGitHub returns a client for apiURL. An empty apiURL uses DefaultGitHubAPI.
func NewGitHub(apiURL string, client *http.Client) *GitHub {
	if apiURL == "" {
		apiURL = DefaultGitHubAPI
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GitHub{apiURL: strings.TrimRight(apiURL, "/"), client: client}
}

type createRepoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
}

// CreateRemoteRepository creates an empty repository owned by the token's user.
func (g *GitHub) CreateRemoteRepository(ctx context.Context, opts CreateRemoteOptions) (*RemoteRepository, error) {
	const op = "create-remote"
	if strings.TrimSpace(opts.Token) == "" {
		return nil, Errorf(KindAuth, op, "a GitHub token is required")
	}
	if strings.TrimSpace(opts.Name) == "" {
		return nil, Errorf(KindValidation, op, "repository name is required")
	}

	body, err := json.Marshal(createRepoRequest{
		Name:        opts.Name,
		Description: opts.Description,
		Private:     opts.Private,
	})
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: op, Message: err.Error(), Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/user/repos", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Message: err.Error(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+opts.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Op: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Error{Kind: KindTransient, Op: op, Message: err.Error(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: kindForStatus(resp.StatusCode), Op: op, Message: apiMessage(resp.StatusCode, data)}
	}

	var repo RemoteRepository
	if err := json.Unmarshal(data, &repo); err != nil {
		return nil, &Error{Kind: KindUnknown, Op: op, Message: "unexpected response: " + err.Error(), Err: err}
	}
	return &repo, nil
}

func kindForStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusNotFound:
		return KindNotFound
	case code == http.StatusUnprocessableEntity || code == http.StatusBadRequest:
		return KindValidation
	case code == http.StatusTooManyRequests || code >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}

// apiMessage extracts a readable message from a GitHub error body, e.g.
// {"message":"Repository creation failed.","errors":[{"message":"name already exists on this account"}]}
func apiMessage(code int, body []byte) string {
	msg := gjson.GetBytes(body, "message").String()
	var details []string
	for _, d := range gjson.GetBytes(body, "errors.#.message").Array() {
		if s := d.String(); s != "" {
			details = append(details, s)
		}
	}
	if len(details) > 0 {
		if msg != "" {
			msg += ": "
		}
		msg += strings.Join(details, "; ")
	}
	if msg == "" {
		msg = fmt.Sprintf("GitHub API returned %d", code)
	}
	return msg
}

// AuthenticatedURL embeds token into an https clone URL for a single push.
func AuthenticatedURL(cloneURL, token string) string {
	if token == "" || !strings.HasPrefix(cloneURL, "https://") {
		return cloneURL
	}
	return "https://x-access-token:" + token + "@" + strings.TrimPrefix(cloneURL, "https://")
}
