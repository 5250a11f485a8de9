package reddit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubmissionID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "canonical post url",
			url:  "https://www.reddit.com/r/golang/comments/1abc2d/some_title/",
			want: "1abc2d",
		},
		{
			name: "no trailing slash",
			url:  "https://www.reddit.com/r/golang/comments/1abc2d/some_title",
			want: "1abc2d",
		},
		{
			name: "no title segment",
			url:  "https://reddit.com/r/golang/comments/1abc2d",
			want: "1abc2d",
		},
		{
			name: "short link host",
			url:  "https://old.reddit.com/r/test/comments/zz9xy/t/",
			want: "zz9xy",
		},
		{
			name:    "not a post url",
			url:     "https://www.reddit.com/r/golang/",
			wantErr: true,
		},
		{
			name:    "comments segment is last",
			url:     "https://www.reddit.com/r/golang/comments/",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubmissionID(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
