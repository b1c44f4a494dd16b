// Package service is the orchestration facade: the single entry point every
// external interface (HTTP, CLI) goes through. It composes key provisioning,
// the issuance workflow and balance inspection, and owns the rule that secret
// seeds never appear in any result destined for a caller.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/treatbank/mintd/internal/balance"
	"github.com/treatbank/mintd/internal/config"
	"github.com/treatbank/mintd/internal/issuance"
	"github.com/treatbank/mintd/internal/keys"
	"github.com/treatbank/mintd/internal/ledger"
	"github.com/treatbank/mintd/internal/storage/history"
)

// Service orchestrates account provisioning, asset issuance and balance
// lookups.
type Service struct {
	cfg         *config.Config
	client      ledger.Client
	store       *keys.Store
	provisioner *keys.Provisioner
	workflow    *issuance.Workflow
	inspector   *balance.Inspector
	history     history.Store
	metrics     *Metrics
	log         *slog.Logger

	// setupGroup collapses concurrent setup calls so two racing requests
	// cannot both generate and fund accounts for the same role.
	setupGroup singleflight.Group
}

// New wires a facade. hist and metrics may be nil.
func New(cfg *config.Config, client ledger.Client, funder keys.Funder, hist history.Store, metrics *Metrics, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:         cfg,
		client:      client,
		store:       keys.NewStore(),
		provisioner: keys.NewProvisioner(funder, cfg.IsTestnet(), log),
		workflow:    issuance.New(client, log),
		inspector: balance.New(client, cfg.BalanceCache.Size,
			time.Duration(cfg.BalanceCache.TTLSeconds)*time.Second),
		history: hist,
		metrics: metrics,
		log:     log,
	}
}

// KeyStore exposes the process-wide key store, for tests and diagnostics.
func (s *Service) KeyStore() *keys.Store {
	return s.store
}

// SetupAccounts provisions the issuer and the distributor, funding fresh
// testnet accounts through friendbot. Roles already provisioned are reused,
// so a re-run after a partial failure only retries the missing role; a
// partially funded state is left as-is, never rolled back.
func (s *Service) SetupAccounts(ctx context.Context) SetupResult {
	v, _, _ := s.setupGroup.Do("setup", func() (interface{}, error) {
		// The setup unit of work is shared by every collapsed caller, so it
		// must not die with whichever request happened to start it.
		return s.setupAccounts(context.WithoutCancel(ctx)), nil
	})
	return v.(SetupResult)
}

func (s *Service) setupAccounts(ctx context.Context) SetupResult {
	result := SetupResult{Status: StatusSuccess, Message: "accounts configured"}
	infos := map[keys.Role]**RoleInfo{
		keys.RoleIssuer:      &result.Issuer,
		keys.RoleDistributor: &result.Distributor,
	}

	for _, role := range []keys.Role{keys.RoleIssuer, keys.RoleDistributor} {
		if existing, ok := s.store.Get(role); ok && !existing.Funding.Failed() {
			*infos[role] = roleInfo(existing)
			continue
		}

		kp, funding, err := s.provisioner.ProvisionRole(ctx, role, s.configuredSeed(role))
		if err != nil {
			s.metrics.observeSetup(StatusError)
			return SetupResult{
				Status:  StatusError,
				Message: fmt.Sprintf("failed to provision %s: %v", role, err),
			}
		}
		provisioned := keys.Provisioned{Keys: kp, Funding: funding}
		if funding.Failed() {
			// Already-provisioned roles stay in the store for an idempotent
			// re-run; the failed role is not recorded, so the next setup call
			// retries it.
			result.Status = StatusError
			result.Message = fmt.Sprintf("failed to fund %s: %s", role, funding.Detail)
			*infos[role] = roleInfo(provisioned)
			s.metrics.observeSetup(StatusError)
			return result
		}
		s.store.Put(role, provisioned)
		*infos[role] = roleInfo(provisioned)
	}

	s.metrics.observeSetup(StatusSuccess)
	return result
}

func roleInfo(p keys.Provisioned) *RoleInfo {
	return &RoleInfo{
		PublicKey:      p.Keys.Address,
		FundingOutcome: p.Funding.Outcome,
		FundingDetail:  p.Funding.Detail,
	}
}

func (s *Service) configuredSeed(role keys.Role) string {
	if role == keys.RoleIssuer {
		return s.cfg.Issuer.Seed
	}
	return s.cfg.Distributor.Seed
}

// IssueAsset runs the issuance workflow for the configured asset. It returns
// ErrNotInitialized when the accounts have not been provisioned yet.
func (s *Service) IssueAsset(ctx context.Context, amount string) (IssueResult, error) {
	issuer, distributor, err := s.roles()
	if err != nil {
		return IssueResult{}, err
	}

	asset := ledger.Asset{Code: s.cfg.Asset.Code, Issuer: issuer.Keys.Address}
	run := s.workflow.Issue(ctx, asset, issuer.Keys, distributor.Keys, amount)
	s.record(ctx, asset, amount, run)

	if !run.Success {
		s.metrics.observeIssuance(StatusError, string(run.Stage))
		return IssueResult{
			Status:      StatusError,
			Message:     run.FailureReason,
			AssetCode:   asset.Code,
			Amount:      amount,
			Stage:       string(run.Stage),
			TrustlineTx: run.TrustlineHash,
		}, nil
	}

	s.metrics.observeIssuance(StatusSuccess, "")
	return IssueResult{
		Status:      StatusSuccess,
		Message:     run.Message,
		AssetCode:   asset.Code,
		Amount:      amount,
		Stage:       string(run.Stage),
		TrustlineTx: run.TrustlineHash,
		PaymentTx:   run.PaymentHash,
	}, nil
}

// EnsureAccountsThenIssue provisions any missing role and then runs the
// issuance workflow. Setup is idempotent for roles already provisioned in
// this process.
func (s *Service) EnsureAccountsThenIssue(ctx context.Context, amount string) (IssueResult, error) {
	if setup := s.SetupAccounts(ctx); setup.Status != StatusSuccess {
		return IssueResult{}, fmt.Errorf("account setup failed: %s", setup.Message)
	}
	return s.IssueAsset(ctx, amount)
}

// CheckBalance looks up an account's holding of the configured custom asset.
func (s *Service) CheckBalance(ctx context.Context, accountID string) (BalanceResult, error) {
	issuer, ok := s.store.Get(keys.RoleIssuer)
	if !ok {
		return BalanceResult{}, fmt.Errorf("cannot identify the asset: %w", ErrNotInitialized)
	}
	asset := ledger.Asset{Code: s.cfg.Asset.Code, Issuer: issuer.Keys.Address}
	return s.lookup(ctx, accountID, asset)
}

// CheckAssetBalance looks up an account's holding of an explicitly identified
// asset, independent of setup state.
func (s *Service) CheckAssetBalance(ctx context.Context, accountID string, asset ledger.Asset) (BalanceResult, error) {
	if err := asset.Validate(); err != nil {
		return BalanceResult{}, err
	}
	return s.lookup(ctx, accountID, asset)
}

// CheckNativeBalance looks up an account's XLM holding. It does not depend on
// setup state.
func (s *Service) CheckNativeBalance(ctx context.Context, accountID string) (BalanceResult, error) {
	return s.lookup(ctx, accountID, ledger.NativeAsset())
}

func (s *Service) lookup(ctx context.Context, accountID string, asset ledger.Asset) (BalanceResult, error) {
	res, err := s.inspector.BalanceOf(ctx, accountID, asset)
	if err != nil {
		s.metrics.observeBalanceLookup(StatusError)
		return BalanceResult{}, err
	}
	s.metrics.observeBalanceLookup(StatusSuccess)
	return BalanceResult{
		Status:    StatusSuccess,
		AssetCode: res.AssetCode,
		Issuer:    res.Issuer,
		Balance:   res.Balance,
		Message:   res.Message,
	}, nil
}

// ListIssuances returns recorded issuance runs, newest first.
func (s *Service) ListIssuances(ctx context.Context, limit int) ([]*history.Record, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, limit)
}

func (s *Service) roles() (issuer, distributor keys.Provisioned, err error) {
	var ok bool
	if issuer, ok = s.store.Get(keys.RoleIssuer); !ok || issuer.Funding.Failed() {
		return issuer, distributor, ErrNotInitialized
	}
	if distributor, ok = s.store.Get(keys.RoleDistributor); !ok || distributor.Funding.Failed() {
		return issuer, distributor, ErrNotInitialized
	}
	return issuer, distributor, nil
}

// record appends the run to the history store. Persistence failures are
// logged, not surfaced: the ledger already holds the truth.
func (s *Service) record(ctx context.Context, asset ledger.Asset, amount string, run issuance.Result) {
	if s.history == nil {
		return
	}
	status := StatusError
	if run.Success {
		status = StatusSuccess
	}
	rec := &history.Record{
		AssetCode:     asset.Code,
		AssetIssuer:   asset.Issuer,
		Amount:        amount,
		Status:        string(status),
		Stage:         string(run.Stage),
		TrustlineHash: run.TrustlineHash,
		PaymentHash:   run.PaymentHash,
		FailureReason: run.FailureReason,
	}
	if err := s.history.Append(ctx, rec); err != nil {
		s.log.Warn("failed to record issuance", "err", err)
	}
}
