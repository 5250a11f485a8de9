package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/SebastianTibata/redbot/internal/domain"
)

// httpClient implements Client against the Reddit JSON API.
type httpClient struct {
	http *http.Client
	base string
	ua   string

	mu       sync.Mutex
	username string // cached after the first Me call
}

func newHTTPClient(hc *http.Client, base, userAgent string) *httpClient {
	return &httpClient{http: hc, base: strings.TrimRight(base, "/"), ua: userAgent}
}

// ── wire types ───────────────────────────────────────────────────────────────

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type linkData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Permalink string `json:"permalink"`
}

type commentData struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Author  string          `json:"author"`
	Body    string          `json:"body"`
	Replies json.RawMessage `json:"replies"` // nested listing, or "" when absent
}

type moreData struct {
	Children []string `json:"children"`
}

// apiResponse is the envelope returned by api_type=json write endpoints.
type apiResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			ID     string  `json:"id"`
			Name   string  `json:"name"`
			URL    string  `json:"url"`
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

// ── operations ───────────────────────────────────────────────────────────────

func (c *httpClient) Me(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.username != "" {
		name := c.username
		c.mu.Unlock()
		return name, nil
	}
	c.mu.Unlock()

	var me struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "me", "/api/v1/me", &me); err != nil {
		return "", err
	}
	if me.Name == "" {
		return "", &domain.PlatformError{Op: "me", Err: fmt.Errorf("identity response has no name")}
	}

	c.mu.Lock()
	c.username = me.Name
	c.mu.Unlock()
	return me.Name, nil
}

func (c *httpClient) Submission(ctx context.Context, postURL string) (*Submission, error) {
	id, err := ParseSubmissionID(postURL)
	if err != nil {
		return nil, &domain.PlatformError{Op: "get_submission", Err: err}
	}

	var payload []json.RawMessage
	if err := c.get(ctx, "get_submission", "/comments/"+id+".json?raw_json=1&limit=1", &payload); err != nil {
		return nil, err
	}
	if len(payload) < 1 {
		return nil, &domain.PlatformError{Op: "get_submission", Err: fmt.Errorf("empty comments response for %s", id)}
	}

	var postListing listing
	if err := json.Unmarshal(payload[0], &postListing); err != nil {
		return nil, &domain.PlatformError{Op: "get_submission", Err: fmt.Errorf("decode post listing: %w", err)}
	}
	if len(postListing.Data.Children) == 0 {
		return nil, &domain.PlatformError{Op: "get_submission", Err: fmt.Errorf("submission %s not found", id)}
	}

	var link linkData
	if err := json.Unmarshal(postListing.Data.Children[0].Data, &link); err != nil {
		return nil, &domain.PlatformError{Op: "get_submission", Err: fmt.Errorf("decode submission: %w", err)}
	}

	return &Submission{
		ID:        link.ID,
		Fullname:  link.Name,
		Subreddit: link.Subreddit,
		Title:     link.Title,
		Author:    link.Author,
		Permalink: link.Permalink,
	}, nil
}

func (c *httpClient) Comments(ctx context.Context, submissionID string) ([]*Comment, error) {
	var payload []json.RawMessage
	if err := c.get(ctx, "list_comments", "/comments/"+submissionID+".json?raw_json=1&limit=500", &payload); err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, &domain.PlatformError{Op: "list_comments", Err: fmt.Errorf("truncated comments response for %s", submissionID)}
	}

	var tree listing
	if err := json.Unmarshal(payload[1], &tree); err != nil {
		return nil, &domain.PlatformError{Op: "list_comments", Err: fmt.Errorf("decode comment listing: %w", err)}
	}

	comments, pending := flattenComments(tree.Data.Children)

	// Expand "load more" stubs until the thread is complete.
	for len(pending) > 0 {
		batch := pending
		if len(batch) > 100 {
			batch = batch[:100]
		}
		pending = pending[len(batch):]

		form := url.Values{
			"api_type": {"json"},
			"link_id":  {"t3_" + submissionID},
			"children": {strings.Join(batch, ",")},
		}
		var resp apiResponse
		if err := c.postForm(ctx, "expand_comments", "/api/morechildren", form, &resp); err != nil {
			return nil, err
		}
		extra, more := flattenComments(resp.JSON.Data.Things)
		comments = append(comments, extra...)
		pending = append(pending, more...)
	}

	return comments, nil
}

// flattenComments walks a comment forest depth-first, returning the comments
// plus the ids of any unexpanded "more" stubs.
func flattenComments(things []thing) ([]*Comment, []string) {
	var comments []*Comment
	var more []string

	for _, th := range things {
		switch th.Kind {
		case "t1":
			var d commentData
			if err := json.Unmarshal(th.Data, &d); err != nil {
				continue
			}
			comments = append(comments, &Comment{
				ID:       d.ID,
				Fullname: d.Name,
				Author:   d.Author,
				Body:     d.Body,
			})
			// Replies is "" for leaf comments, a listing object otherwise.
			if len(d.Replies) > 0 && d.Replies[0] == '{' {
				var nested listing
				if err := json.Unmarshal(d.Replies, &nested); err == nil {
					sub, m := flattenComments(nested.Data.Children)
					comments = append(comments, sub...)
					more = append(more, m...)
				}
			}
		case "more":
			var d moreData
			if err := json.Unmarshal(th.Data, &d); err == nil {
				more = append(more, d.Children...)
			}
		}
	}
	return comments, more
}

func (c *httpClient) Moderators(ctx context.Context, subreddit string) ([]string, error) {
	var userList struct {
		Data struct {
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := c.get(ctx, "list_moderators", "/r/"+subreddit+"/about/moderators.json", &userList); err != nil {
		return nil, err
	}

	mods := make([]string, 0, len(userList.Data.Children))
	for _, child := range userList.Data.Children {
		mods = append(mods, child.Name)
	}
	return mods, nil
}

func (c *httpClient) SubmitPost(ctx context.Context, subreddit, title, text string) (*Submission, error) {
	form := url.Values{
		"api_type": {"json"},
		"sr":       {subreddit},
		"kind":     {"self"},
		"title":    {title},
		"text":     {text},
	}
	var resp apiResponse
	if err := c.postForm(ctx, "submit", "/api/submit", form, &resp); err != nil {
		return nil, err
	}
	if len(resp.JSON.Errors) > 0 {
		return nil, &domain.PlatformError{Op: "submit", Err: fmt.Errorf("reddit rejected submission: %v", resp.JSON.Errors)}
	}
	return &Submission{
		ID:        resp.JSON.Data.ID,
		Fullname:  resp.JSON.Data.Name,
		Subreddit: subreddit,
		Title:     title,
		Permalink: resp.JSON.Data.URL,
	}, nil
}

func (c *httpClient) Reply(ctx context.Context, commentFullname, text string) error {
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {commentFullname},
		"text":     {text},
	}
	var resp apiResponse
	if err := c.postForm(ctx, "reply", "/api/comment", form, &resp); err != nil {
		return err
	}
	if len(resp.JSON.Errors) > 0 {
		return &domain.PlatformError{Op: "reply", Err: fmt.Errorf("reddit rejected reply: %v", resp.JSON.Errors)}
	}
	return nil
}

func (c *httpClient) DeleteComment(ctx context.Context, commentFullname string) error {
	form := url.Values{"id": {commentFullname}}
	var resp json.RawMessage
	return c.postForm(ctx, "delete_comment", "/api/del", form, &resp)
}

// ── transport helpers ────────────────────────────────────────────────────────

func (c *httpClient) get(ctx context.Context, op, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return &domain.PlatformError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	return c.do(op, req, v)
}

func (c *httpClient) postForm(ctx context.Context, op, path string, form url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return &domain.PlatformError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(op, req, v)
}

func (c *httpClient) do(op string, req *http.Request, v any) error {
	req.Header.Set("User-Agent", c.ua)

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.PlatformError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return &domain.PlatformError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &domain.PlatformError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			return &domain.PlatformError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}
