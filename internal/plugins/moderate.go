package plugins

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/SebastianTibata/redbot/internal/domain"
	"github.com/SebastianTibata/redbot/internal/reddit"
)

// moderateConfig is the expected JSON structure of a moderate task's config.
type moderateConfig struct {
	PostURL string `json:"post_url"`
	Action  string `json:"action"`
	Filters struct {
		ForbiddenWords []string `json:"forbidden_words"`
		SpamPatterns   []string `json:"spam_patterns"`
		MaxCapsPercent *int     `json:"max_caps_percent"`
	} `json:"filters"`
}

// ModeratePlugin scans every comment on a post against the configured
// filters and removes the violators. It refuses to run unless the executing
// identity moderates the post's subreddit.
//
// The scan and the removal are two separate passes: the full violation set
// is collected first, then acted on, so no deletion happens while the
// listing is still being evaluated.
type ModeratePlugin struct {
	logger *slog.Logger
}

// NewModeratePlugin creates a ModeratePlugin.
func NewModeratePlugin(logger *slog.Logger) *ModeratePlugin {
	return &ModeratePlugin{logger: logger}
}

func (p *ModeratePlugin) TaskType() string { return "moderate" }

func (p *ModeratePlugin) Execute(ctx context.Context, client reddit.Client, config json.RawMessage, account *domain.Account) error {
	ctx, span := otel.Tracer("executor").Start(ctx, "plugin.moderate")
	defer span.End()

	var cfg moderateConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		span.SetStatus(codes.Error, "invalid config")
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "config is not valid JSON: " + err.Error()}
	}
	if cfg.PostURL == "" {
		return &domain.ConfigError{TaskType: p.TaskType(), Reason: "missing required field 'post_url'"}
	}
	action := cfg.Action
	if action == "" {
		action = "remove"
	}
	maxCaps := 100 // disabled
	if cfg.Filters.MaxCapsPercent != nil {
		maxCaps = *cfg.Filters.MaxCapsPercent
	}

	spamPatterns := make([]*regexp.Regexp, 0, len(cfg.Filters.SpamPatterns))
	for _, pattern := range cfg.Filters.SpamPatterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return &domain.ConfigError{TaskType: p.TaskType(), Reason: "invalid spam pattern " + pattern + ": " + err.Error()}
		}
		spamPatterns = append(spamPatterns, re)
	}

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
	span.SetAttributes(attribute.String("reddit.subreddit", submission.Subreddit))

	moderators, err := client.Moderators(ctx, submission.Subreddit)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !containsString(moderators, me) {
		err := &domain.PermissionError{User: me, Subreddit: submission.Subreddit}
		span.RecordError(err)
		span.SetStatus(codes.Error, "not a moderator")
		return err
	}

	comments, err := client.Comments(ctx, submission.ID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	// Pass 1: collect every violating comment.
	var violations []*reddit.Comment
	for _, comment := range comments {
		if comment.Author == me {
			continue
		}
		reason := ""
		switch {
		case containsForbiddenWord(comment.Body, cfg.Filters.ForbiddenWords):
			reason = "forbidden word"
		case matchesSpamPattern(comment.Body, spamPatterns):
			reason = "spam pattern"
		case maxCaps < 100 && capsPercentExceeds(comment.Body, maxCaps):
			reason = "excessive caps"
		}
		if reason != "" {
			p.logger.Info("comment flagged",
				slog.String("comment_id", comment.ID),
				slog.String("author", comment.Author),
				slog.String("reason", reason),
			)
			violations = append(violations, comment)
		}
	}
	span.SetAttributes(attribute.Int("reddit.violations", len(violations)))

	if len(violations) == 0 {
		p.logger.Info("no comments violate the filters")
		return nil
	}

	// Pass 2: act on the collected set.
	if action != "remove" {
		p.logger.Warn("unknown moderation action, scan only",
			slog.String("action", action),
			slog.Int("violations", len(violations)),
		)
		return nil
	}

	removed := 0
	for _, comment := range violations {
		if err := client.DeleteComment(ctx, comment.Fullname); err != nil {
			// Per-comment removal failures are logged and skipped so one
			// stuck comment does not leave the rest of the batch standing.
			p.logger.Error("failed to remove comment",
				slog.String("comment_id", comment.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		removed++
	}

	p.logger.Info("moderation finished",
		slog.Int("violations", len(violations)),
		slog.Int("removed", removed),
	)
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsForbiddenWord(body string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	lower := strings.ToLower(body)
	for _, word := range words {
		if word == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

func matchesSpamPattern(body string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(body) {
			return true
		}
	}
	return false
}

// capsPercentExceeds reports whether the share of uppercase letters among
// the alphabetic characters of body is strictly above limit. A body with no
// alphabetic characters never trips the filter.
func capsPercentExceeds(body string, limit int) bool {
	var upper, alpha int
	for _, r := range body {
		if unicode.IsLetter(r) {
			alpha++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if alpha == 0 {
		return false
	}
	return float64(upper)/float64(alpha)*100 > float64(limit)
}
