package plugins

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/SebastianTibata/redbot/internal/domain"
	"github.com/SebastianTibata/redbot/internal/reddit"
)

// replyConfig is the expected JSON structure of a reply task's config.
type replyConfig struct {
	PostURL   string   `json:"post_url"`
	Keywords  []string `json:"keywords"`
	ReplyText string   `json:"reply_text"`
}

// ReplyPlugin replies to every comment on a post whose body contains one of
// the configured keywords. Comments authored by the executing identity are
// never replied to.
type ReplyPlugin struct {
	logger *slog.Logger
}

// NewReplyPlugin creates a ReplyPlugin.
func NewReplyPlugin(logger *slog.Logger) *ReplyPlugin {
	return &ReplyPlugin{logger: logger}
}

func (p *ReplyPlugin) TaskType() string { return "reply" }

func (p *ReplyPlugin) Execute(ctx context.Context, client reddit.Client, config json.RawMessage, account *domain.Account) error {
	ctx, span := otel.Tracer("executor").Start(ctx, "plugin.reply")
	defer span.End()

	var cfg replyConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		span.SetStatus(codes.Error, "invalid config")
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "config is not valid JSON: " + err.Error()}
	}
	if cfg.PostURL == "" {
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "missing required field 'post_url'"}
	}
	if len(cfg.Keywords) == 0 {
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "'keywords' must be a non-empty list"}
	}
	if cfg.ReplyText == "" {
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "missing required field 'reply_text'"}
	}
	span.SetAttributes(attribute.String("reddit.post_url", cfg.PostURL))

	me, err := client.Me(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	submission, err := client.Submission(ctx, cfg.PostURL)
	if err != nil {
		span.RecordError(err)
		return err
	}

	comments, err := client.Comments(ctx, submission.ID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	replied := 0
	for _, comment := range comments {
		if comment.Author == me {
			continue // never reply to ourselves
		}
		if !matchesAnyKeyword(comment.Body, cfg.Keywords) {
			continue
		}
		if err := client.Reply(ctx, comment.Fullname, cfg.ReplyText); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reply failed")
			return err
		}
		replied++
		p.logger.Info("replied to comment",
			slog.String("comment_id", comment.ID),
			slog.String("author", comment.Author),
		)
	}

	span.SetAttributes(attribute.Int("reddit.replies_sent", replied))
	p.logger.Info("reply task finished", slog.Int("replies_sent", replied))
	return nil
}

// matchesAnyKeyword reports whether body contains any keyword,
// case-insensitively.
func matchesAnyKeyword(body string, keywords []string) bool {
	lower := strings.ToLower(body)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
