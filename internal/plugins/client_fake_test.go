package plugins_test

import (
	"context"
	"errors"

	"github.com/SebastianTibata/redbot/internal/reddit"
)

// fakeClient is an in-memory reddit.Client that records every platform
// call in order.
type fakeClient struct {
	me         string
	submission *reddit.Submission
	comments   []*reddit.Comment
	moderators []string

	submitErr    error
	commentsErr  error
	deleteErr    error
	deleteErrFor string // fullname whose deletion fails
	replyErr     error

	calls     []string // operation names in invocation order
	submitted []submitCall
	replies   []replyCall
	deleted   []string
}

type submitCall struct {
	subreddit, title, text string
}

type replyCall struct {
	fullname, text string
}

func (f *fakeClient) Me(_ context.Context) (string, error) {
	f.calls = append(f.calls, "me")
	return f.me, nil
}

func (f *fakeClient) Submission(_ context.Context, _ string) (*reddit.Submission, error) {
	f.calls = append(f.calls, "submission")
	return f.submission, nil
}

func (f *fakeClient) Comments(_ context.Context, _ string) ([]*reddit.Comment, error) {
	f.calls = append(f.calls, "comments")
	if f.commentsErr != nil {
		return nil, f.commentsErr
	}
	return f.comments, nil
}

func (f *fakeClient) Moderators(_ context.Context, _ string) ([]string, error) {
	f.calls = append(f.calls, "moderators")
	return f.moderators, nil
}

func (f *fakeClient) SubmitPost(_ context.Context, subreddit, title, text string) (*reddit.Submission, error) {
	f.calls = append(f.calls, "submit")
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, submitCall{subreddit, title, text})
	return &reddit.Submission{ID: "newpost", Subreddit: subreddit, Title: title}, nil
}

func (f *fakeClient) Reply(_ context.Context, fullname, text string) error {
	f.calls = append(f.calls, "reply")
	if f.replyErr != nil {
		return f.replyErr
	}
	f.replies = append(f.replies, replyCall{fullname, text})
	return nil
}

func (f *fakeClient) DeleteComment(_ context.Context, fullname string) error {
	f.calls = append(f.calls, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.deleteErrFor != "" && f.deleteErrFor == fullname {
		return errors.New("comment locked")
	}
	f.deleted = append(f.deleted, fullname)
	return nil
}

var _ reddit.Client = (*fakeClient)(nil)
