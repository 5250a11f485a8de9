package plugins

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/SebastianTibata/redbot/internal/domain"
	"github.com/SebastianTibata/redbot/internal/reddit"
)

// publishConfig is the expected JSON structure of a publish task's config.
type publishConfig struct {
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}

// PublishPlugin creates a new self post. When no subreddit is configured it
// posts to the account's own profile namespace (u_<handle>).
type PublishPlugin struct {
	logger *slog.Logger
}

// NewPublishPlugin creates a PublishPlugin.
func NewPublishPlugin(logger *slog.Logger) *PublishPlugin {
	return &PublishPlugin{logger: logger}
}

func (p *PublishPlugin) TaskType() string { return "publish" }

func (p *PublishPlugin) Execute(ctx context.Context, client reddit.Client, config json.RawMessage, account *domain.Account) error {
	ctx, span := otel.Tracer("executor").Start(ctx, "plugin.publish")
	defer span.End()

	var cfg publishConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		span.SetStatus(codes.Error, "invalid config")
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "config is not valid JSON: " + err.Error()}
	}
	if cfg.Title == "" {
		span.SetStatus(codes.Error, "missing 'title'")
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "missing required field 'title'"}
	}
	if cfg.Text == "" {
		span.SetStatus(codes.Error, "missing 'text'")
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "missing required field 'text'"}
	}

	subreddit := cfg.Subreddit
	if subreddit == "" {
		subreddit = "u_" + account.Handle
		p.logger.Info("no subreddit configured, posting to profile",
			slog.String("subreddit", subreddit),
		)
	}
	span.SetAttributes(attribute.String("reddit.subreddit", subreddit))

	submission, err := client.SubmitPost(ctx, subreddit, cfg.Title, cfg.Text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		return err
	}

	p.logger.Info("post published",
		slog.String("subreddit", subreddit),
		slog.String("permalink", submission.Permalink),
	)
	return nil
}
