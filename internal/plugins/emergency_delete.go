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

// emergencyDeleteConfig is the expected JSON structure of an
// emergency_delete task's config.
type emergencyDeleteConfig struct {
	PostURL string `json:"post_url"`
}

// EmergencyDeletePlugin deletes every comment the executing identity has
// made on a post. Re-runs are naturally idempotent: already-deleted comments
// no longer carry the bot's author name.
type EmergencyDeletePlugin struct {
	logger *slog.Logger
}

// NewEmergencyDeletePlugin creates an EmergencyDeletePlugin.
func NewEmergencyDeletePlugin(logger *slog.Logger) *EmergencyDeletePlugin {
	return &EmergencyDeletePlugin{logger: logger}
}

func (p *EmergencyDeletePlugin) TaskType() string { return "emergency_delete" }

func (p *EmergencyDeletePlugin) Execute(ctx context.Context, client reddit.Client, config json.RawMessage, account *domain.Account) error {
	ctx, span := otel.Tracer("executor").Start(ctx, "plugin.emergency_delete")
	defer span.End()

	var cfg emergencyDeleteConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		span.SetStatus(codes.Error, "invalid config")
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "config is not valid JSON: " + err.Error()}
	}
	if cfg.PostURL == "" {
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "missing required field 'post_url'"}
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

	deleted := 0
	for _, comment := range comments {
		if comment.Author != me {
			continue
		}
		if err := client.DeleteComment(ctx, comment.Fullname); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "delete failed")
			return err
		}
		deleted++
		p.logger.Info("deleted own comment", slog.String("comment_id", comment.ID))
	}

	span.SetAttributes(attribute.Int("reddit.comments_deleted", deleted))
	p.logger.Info("emergency delete finished", slog.Int("comments_deleted", deleted))
	return nil
}
