package payments

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/chain"
	"github.com/payrollz/payrollz-backend/pkg/config"
	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/enums"
	pkgerrors "github.com/payrollz/payrollz-backend/pkg/errors"
	"github.com/payrollz/payrollz-backend/pkg/logger"
)

// Service drives the payment state machine: created -> submitted -> paid or
// failed. Pay moves an item forward by at most one transfer; the confirm
// operations resolve submitted items against mined receipts.
type Service interface {
	Pay(ctx context.Context, itemID uuid.UUID) (*PayOutcome, error)
	ConfirmItem(ctx context.Context, itemID uuid.UUID) (*ConfirmOutcome, error)
	ConfirmBatch(ctx context.Context, batchID uuid.UUID) (*SweepReport, error)
	SweepSubmitted(ctx context.Context) (*SweepReport, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo    Repository
	Gateway chain.Gateway
	Retrier *chain.Retrier
	Logger  *logger.Logger
	Chain   config.ChainConfig
	Now     func() time.Time
}

type service struct {
	repo    Repository
	gateway chain.Gateway
	retrier *chain.Retrier
	logg    *logger.Logger
	cfg     config.ChainConfig
	now     func() time.Time

	decimalsMu     sync.Mutex
	decimalsCached *uint8
}

// NewService wires the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if params.Retrier == nil {
		return nil, fmt.Errorf("retrier is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	transferTimeout := params.Chain.TransferTimeout
	if transferTimeout <= 0 {
		transferTimeout = 15 * time.Second
	}
	cfg := params.Chain
	cfg.TransferTimeout = transferTimeout

	return &service{
		repo:    params.Repo,
		gateway: params.Gateway,
		retrier: params.Retrier,
		logg:    params.Logger,
		cfg:     cfg,
		now:     now,
	}, nil
}

func (s *service) Pay(ctx context.Context, itemID uuid.UUID) (*PayOutcome, error) {
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payroll item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payroll item")
	}
	ctx = s.logg.WithItemID(ctx, item.ID.String())

	// Idempotent exits: a paid item, or one already in flight with a real
	// hash, reports success with the stored state instead of re-submitting.
	if item.Status == enums.PayrollItemStatusPaid {
		return &PayOutcome{
			ItemID: item.ID,
			OK:     true,
			Status: item.Status,
			TxHash: item.TxHash,
		}, nil
	}
	if item.Status == enums.PayrollItemStatusSubmitted && item.TxHash != nil && !IsClaimSentinel(*item.TxHash) {
		return &PayOutcome{
			ItemID: item.ID,
			OK:     true,
			Status: item.Status,
			TxHash: item.TxHash,
		}, nil
	}
	if item.Status != enums.PayrollItemStatusCreated {
		return &PayOutcome{
			ItemID:  item.ID,
			Status:  item.Status,
			Reason:  ReasonNotPayable,
			Message: fmt.Sprintf("item is %s, only created items can be paid", item.Status),
			TxHash:  item.TxHash,
		}, nil
	}

	token := NewClaimToken()
	claimed, err := s.repo.ClaimItem(ctx, item.ID, token)
	if err != nil {
		s.logg.Error(ctx, "claiming payroll item", err)
		return &PayOutcome{
			ItemID:    item.ID,
			Status:    item.Status,
			Reason:    ReasonClaimFailed,
			Message:   err.Error(),
			Retryable: true,
		}, nil
	}
	if !claimed {
		// Another attempt holds or already redeemed the claim. Re-read and
		// report the item's current state as an idempotent success so every
		// concurrent caller sees the same outcome.
		s.logg.Warn(ctx, "lost payment claim race")
		fresh, ferr := s.repo.FindItemByID(ctx, item.ID)
		if ferr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, ferr, "re-reading payroll item after claim race")
		}
		return &PayOutcome{
			ItemID:     item.ID,
			OK:         true,
			Idempotent: true,
			Status:     fresh.Status,
			TxHash:     fresh.TxHash,
		}, nil
	}

	if item.Employee == nil {
		return s.releaseAndReject(ctx, item, token, ReasonNotPayable, "payroll item has no employee", false)
	}
	if item.Employee.WalletAddress == nil || *item.Employee.WalletAddress == "" {
		return s.releaseAndReject(ctx, item, token, ReasonNoWallet, "employee has no wallet address", false)
	}
	wallet := *item.Employee.WalletAddress
	if !chain.IsValidAddress(wallet) {
		return s.releaseAndReject(ctx, item, token, ReasonBadWallet, "employee wallet address is not a valid address", false)
	}

	amount, err := decimal.NewFromString(item.AmountUSDC)
	if err != nil || amount.Sign() <= 0 {
		return s.releaseAndReject(ctx, item, token, ReasonNotPayable, "item amount is not a positive number", false)
	}

	decimals, err := s.tokenDecimals(ctx)
	if err != nil {
		return s.rejectOnRPCError(ctx, item, token, err, "reading token decimals")
	}

	baseAmount, err := chain.ToBaseUnits(amount, decimals)
	if err != nil {
		return s.releaseAndReject(ctx, item, token, ReasonNotPayable, err.Error(), false)
	}

	var balance *big.Int
	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		var rerr error
		balance, rerr = s.gateway.BalanceOf(ctx, s.gateway.Sender())
		return rerr
	})
	if err != nil {
		return s.rejectOnRPCError(ctx, item, token, err, "reading sender balance")
	}
	if balance.Cmp(baseAmount) < 0 {
		return s.releaseAndReject(ctx, item, token, ReasonInsufficientBalance,
			fmt.Sprintf("sender balance %s is below the required %s base units", balance, baseAmount), false)
	}

	// The transfer is never retried. If it times out we cannot know whether
	// the transaction landed, so the claim stays in place until an operator
	// or the confirmation sweep resolves it.
	txCtx, cancel := context.WithTimeout(ctx, s.cfg.TransferTimeout)
	txHash, terr := s.gateway.Transfer(txCtx, wallet, baseAmount)
	cancel()
	if terr != nil {
		if chain.IsTimeout(terr) {
			s.logg.Error(ctx, "transfer timed out with unknown result", terr)
			return &PayOutcome{
				ItemID:    item.ID,
				Status:    enums.PayrollItemStatusCreated,
				Reason:    ReasonRPCTimeoutUncertain,
				Message:   "transfer submission timed out; the transaction may still confirm",
				Retryable: true,
			}, nil
		}
		if chain.IsTransient(terr) {
			return s.releaseAndReject(ctx, item, token, ReasonRPCBusy, "rpc endpoint is unavailable, try again", true)
		}
		// Anything else is an unknown outcome: the node may have accepted the
		// transaction before erroring. Keep the claim so a retry cannot
		// double-pay; the confirmation sweep or an operator resolves it.
		s.logg.Error(ctx, "transfer failed with unknown result", terr)
		return &PayOutcome{
			ItemID:    item.ID,
			Status:    enums.PayrollItemStatusCreated,
			Reason:    ReasonRPCError,
			Message:   terr.Error(),
			Retryable: true,
		}, nil
	}

	redeemed, err := s.repo.RedeemClaim(ctx, item.ID, token, txHash)
	if err != nil || !redeemed {
		if err != nil {
			s.logg.Error(ctx, "persisting transaction hash", err)
		} else {
			s.logg.Warn(ctx, "claim token vanished before redeem")
		}
		if relErr := s.repo.ReleaseClaim(ctx, item.ID, token); relErr != nil {
			s.logg.Error(ctx, "releasing claim after redeem failure", relErr)
		}
		return &PayOutcome{
			ItemID:    item.ID,
			Status:    enums.PayrollItemStatusCreated,
			TxHash:    &txHash,
			Reason:    ReasonDBPersistFailed,
			Message:   "transfer was sent but the hash could not be stored",
			Retryable: true,
		}, nil
	}

	ctx = s.logg.WithField(ctx, "tx_hash", txHash)
	s.logg.Info(ctx, "transfer submitted")

	return &PayOutcome{
		ItemID: item.ID,
		OK:     true,
		Status: enums.PayrollItemStatusSubmitted,
		TxHash: &txHash,
	}, nil
}

func (s *service) releaseAndReject(ctx context.Context, item *models.PayrollItem, token, reason, message string, retryable bool) (*PayOutcome, error) {
	if err := s.repo.ReleaseClaim(ctx, item.ID, token); err != nil {
		s.logg.Error(ctx, "releasing payment claim", err)
	}
	return &PayOutcome{
		ItemID:    item.ID,
		Status:    enums.PayrollItemStatusCreated,
		Reason:    reason,
		Message:   message,
		Retryable: retryable,
	}, nil
}

func (s *service) rejectOnRPCError(ctx context.Context, item *models.PayrollItem, token string, err error, action string) (*PayOutcome, error) {
	s.logg.Error(ctx, action, err)
	if chain.IsTransient(err) {
		return s.releaseAndReject(ctx, item, token, ReasonRPCBusy, "rpc endpoint is unavailable, try again", true)
	}
	return s.releaseAndReject(ctx, item, token, ReasonRPCError, err.Error(), false)
}

func (s *service) tokenDecimals(ctx context.Context) (uint8, error) {
	s.decimalsMu.Lock()
	cached := s.decimalsCached
	s.decimalsMu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	var decimals uint8
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		var rerr error
		decimals, rerr = s.gateway.Decimals(ctx)
		return rerr
	})
	if err != nil {
		return 0, err
	}

	s.decimalsMu.Lock()
	s.decimalsCached = &decimals
	s.decimalsMu.Unlock()
	return decimals, nil
}

func (s *service) ConfirmItem(ctx context.Context, itemID uuid.UUID) (*ConfirmOutcome, error) {
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payroll item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payroll item")
	}
	return s.confirm(ctx, item), nil
}

// confirm resolves one item against the chain. It never returns an error:
// transient RPC trouble surfaces as an rpc_busy result so batch sweeps keep
// going.
func (s *service) confirm(ctx context.Context, item *models.PayrollItem) *ConfirmOutcome {
	ctx = s.logg.WithItemID(ctx, item.ID.String())
	outcome := &ConfirmOutcome{
		ItemID: item.ID,
		Status: item.Status,
		TxHash: item.TxHash,
	}

	if item.Status != enums.PayrollItemStatusSubmitted {
		if item.Status == enums.PayrollItemStatusCreated && item.TxHash != nil && IsClaimSentinel(*item.TxHash) {
			outcome.Result = ConfirmResultSkipped
			return outcome
		}
		outcome.Result = ConfirmResultNoAction
		return outcome
	}

	if item.TxHash == nil || *item.TxHash == "" {
		// A submitted item without a hash can never resolve on its own.
		// Report it and leave the row untouched for an operator.
		s.logg.Warn(ctx, "submitted item has no transaction hash")
		outcome.Result = ConfirmResultMissingTx
		return outcome
	}
	if IsClaimSentinel(*item.TxHash) {
		outcome.Result = ConfirmResultSkipped
		return outcome
	}

	var receipt *chain.Receipt
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		var rerr error
		receipt, rerr = s.gateway.TransactionReceipt(ctx, *item.TxHash)
		return rerr
	})
	if err != nil {
		s.logg.Error(ctx, "fetching transaction receipt", err)
		outcome.Result = ConfirmResultRPCBusy
		return outcome
	}
	if receipt == nil {
		outcome.Result = ConfirmResultPending
		return outcome
	}

	switch receipt.Status {
	case chain.StatusSuccess:
		paidAt := s.now().UTC()
		updated, err := s.repo.MarkPaidFromSubmitted(ctx, item.ID, paidAt)
		if err != nil {
			s.logg.Error(ctx, "marking item paid", err)
			outcome.Result = ConfirmResultRPCBusy
			return outcome
		}
		outcome.Result = ConfirmResultPaid
		outcome.Status = enums.PayrollItemStatusPaid
		outcome.PaidAt = &paidAt
		outcome.Updated = updated
		s.logg.Info(ctx, "payroll item confirmed paid")
	case chain.StatusReverted:
		updated, err := s.repo.MarkFailedFromSubmitted(ctx, item.ID, "TRANSACTION_REVERTED")
		if err != nil {
			s.logg.Error(ctx, "marking item failed", err)
			outcome.Result = ConfirmResultRPCBusy
			return outcome
		}
		outcome.Result = ConfirmResultFailed
		outcome.Status = enums.PayrollItemStatusFailed
		outcome.Updated = updated
		s.logg.Warn(ctx, "payroll item transfer reverted")
	default:
		outcome.Result = ConfirmResultPending
	}
	return outcome
}

func (s *service) ConfirmBatch(ctx context.Context, batchID uuid.UUID) (*SweepReport, error) {
	items, err := s.repo.ListSweepableByBatch(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing batch items")
	}
	return s.sweep(ctx, items), nil
}

func (s *service) SweepSubmitted(ctx context.Context) (*SweepReport, error) {
	items, err := s.repo.ListSweepable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing submitted items")
	}
	return s.sweep(ctx, items), nil
}

func (s *service) sweep(ctx context.Context, items []models.PayrollItem) *SweepReport {
	report := &SweepReport{}
	for i := range items {
		outcome := s.confirm(ctx, &items[i])
		report.absorb(outcome)
	}
	return report
}
