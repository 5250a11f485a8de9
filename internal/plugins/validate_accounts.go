package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SebastianTibata/redbot/internal/domain"
	"github.com/SebastianTibata/redbot/internal/postgres"
	"github.com/SebastianTibata/redbot/internal/reddit"
)

// ValidateAccountsPlugin checks every stored account by attempting a fresh
// platform connection for each. It ignores the client and account the worker
// hands it; every account gets its own connection attempt, and one bad
// credential never aborts the batch.
type ValidateAccountsPlugin struct {
	accounts  postgres.AccountRepository
	connector reddit.Connector
	logger    *slog.Logger
}

// NewValidateAccountsPlugin creates a ValidateAccountsPlugin. Returns an
// error when a dependency is missing so the registry can skip registration
// without aborting startup.
func NewValidateAccountsPlugin(accounts postgres.AccountRepository, connector reddit.Connector, logger *slog.Logger) (*ValidateAccountsPlugin, error) {
	if accounts == nil {
		return nil, fmt.Errorf("validate_accounts: account repository is required")
	}
	if connector == nil {
		return nil, fmt.Errorf("validate_accounts: connector is required")
	}
	return &ValidateAccountsPlugin{accounts: accounts, connector: connector, logger: logger}, nil
}

func (p *ValidateAccountsPlugin) TaskType() string { return "validate_accounts" }

func (p *ValidateAccountsPlugin) Execute(ctx context.Context, _ reddit.Client, _ json.RawMessage, _ *domain.Account) error {
	ctx, span := otel.Tracer("executor").Start(ctx, "plugin.validate_accounts")
	defer span.End()

	accounts, err := p.accounts.List(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	active, inactive := 0, 0
	for _, account := range accounts {
		log := p.logger.With(
			slog.String("account_id", account.ID),
			slog.String("handle", account.Handle),
		)

		client, err := p.connector.Connect(ctx, account)
		if err != nil {
			inactive++
			log.Warn("account inactive", slog.String("error", err.Error()))
			continue
		}

		name, err := client.Me(ctx)
		if err != nil {
			inactive++
			log.Warn("account inactive, identity lookup failed", slog.String("error", err.Error()))
			continue
		}

		active++
		log.Info("account active", slog.String("identity", name))
	}

	span.SetAttributes(
		attribute.Int("accounts.active", active),
		attribute.Int("accounts.inactive", inactive),
	)
	p.logger.Info("account validation finished",
		slog.Int("active", active),
		slog.Int("inactive", inactive),
	)
	return nil
}
