// Package reddit wraps the subset of the Reddit data API the task plugins
// need: identity resolution, submission and comment reads, moderation and
// posting writes. Credentials are per-account OAuth refresh tokens.
package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Submission is a Reddit post.
type Submission struct {
	ID        string // short id, e.g. "1abc2d"
	Fullname  string // prefixed id, e.g. "t3_1abc2d"
	Subreddit string
	Title     string
	Author    string
	Permalink string
}

// Comment is one comment on a submission.
type Comment struct {
	ID       string
	Fullname string // prefixed id, e.g. "t1_xyz"
	Author   string
	Body     string
}

// Client is an authenticated handle to Reddit for one account.
type Client interface {
	// Me returns the authenticated identity's username.
	Me(ctx context.Context) (string, error)
	// Submission resolves a post URL to the submission it points at.
	Submission(ctx context.Context, postURL string) (*Submission, error)
	// Comments returns every comment on a submission, with collapsed
	// "load more" stubs fully expanded.
	Comments(ctx context.Context, submissionID string) ([]*Comment, error)
	// Moderators lists the usernames moderating a subreddit.
	Moderators(ctx context.Context, subreddit string) ([]string, error)
	// SubmitPost creates a self post in the given subreddit.
	SubmitPost(ctx context.Context, subreddit, title, text string) (*Submission, error)
	// Reply posts a reply to the comment with the given fullname.
	Reply(ctx context.Context, commentFullname, text string) error
	// DeleteComment deletes the comment with the given fullname.
	DeleteComment(ctx context.Context, commentFullname string) error
}

// ParseSubmissionID extracts the short submission id from a post URL like
// https://www.reddit.com/r/golang/comments/1abc2d/some_title/.
func ParseSubmissionID(postURL string) (string, error) {
	u, err := url.Parse(postURL)
	if err != nil {
		return "", fmt.Errorf("parse post url %q: %w", postURL, err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, s := range segments {
		if s == "comments" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("no submission id in post url %q", postURL)
}
