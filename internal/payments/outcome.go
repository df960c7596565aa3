package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/payrollz/payrollz-backend/pkg/enums"
)

// Failure reasons reported by the pay flow. They are part of the API surface:
// clients use Retryable to decide whether the same item can be paid again.
const (
	ReasonNotPayable          = "NOT_PAYABLE"
	ReasonNoWallet            = "NO_WALLET"
	ReasonBadWallet           = "BAD_WALLET"
	ReasonInsufficientBalance = "INSUFFICIENT_BALANCE"
	ReasonClaimFailed         = "CLAIM_FAILED"
	ReasonRPCBusy             = "RPC_BUSY"
	ReasonRPCTimeoutUncertain = "RPC_TIMEOUT_UNCERTAIN"
	ReasonRPCError            = "RPC_ERROR"
	ReasonDBPersistFailed     = "DB_PERSIST_FAILED"
)

// PayOutcome is the result of a single pay attempt. A business failure is
// still a successful HTTP response: OK is false, Reason says why, and
// Retryable says whether trying again can possibly succeed.
type PayOutcome struct {
	ItemID     uuid.UUID               `json:"item_id"`
	OK         bool                    `json:"ok"`
	Idempotent bool                    `json:"idempotent,omitempty"`
	Status     enums.PayrollItemStatus `json:"status"`
	TxHash     *string                 `json:"tx_hash,omitempty"`
	Reason     string                  `json:"reason,omitempty"`
	Message    string                  `json:"message,omitempty"`
	Retryable  bool                    `json:"retryable"`
}

// Confirmation results for a single submitted item.
const (
	ConfirmResultPaid      = "paid"
	ConfirmResultFailed    = "failed"
	ConfirmResultPending   = "pending"
	ConfirmResultRPCBusy   = "rpc_busy"
	ConfirmResultSkipped   = "skipped_claim"
	ConfirmResultMissingTx = "missing_tx"
	ConfirmResultNoAction  = "no_action"
)

// ConfirmOutcome reports what a receipt check decided for one item.
type ConfirmOutcome struct {
	ItemID  uuid.UUID               `json:"item_id"`
	Result  string                  `json:"result"`
	Status  enums.PayrollItemStatus `json:"status"`
	TxHash  *string                 `json:"tx_hash,omitempty"`
	PaidAt  *time.Time              `json:"paid_at,omitempty"`
	Updated bool                    `json:"updated"`
}

// SweepReport aggregates a confirmation pass over submitted items. Transient
// RPC errors are counted per item and never abort the sweep.
type SweepReport struct {
	Checked      int `json:"checked"`
	Updated      int `json:"updated"`
	NotMined     int `json:"not_mined"`
	MinedPaid    int `json:"mined_paid"`
	MinedFailed  int `json:"mined_failed"`
	SkippedClaim int `json:"skipped_claim"`
	RPCBusy      int `json:"rpc_busy"`
}

func (r *SweepReport) absorb(outcome *ConfirmOutcome) {
	switch outcome.Result {
	case ConfirmResultPaid:
		r.Checked++
		r.MinedPaid++
		r.Updated++
	case ConfirmResultFailed:
		r.Checked++
		r.MinedFailed++
		r.Updated++
	case ConfirmResultPending:
		r.Checked++
		r.NotMined++
	case ConfirmResultRPCBusy:
		r.Checked++
		r.RPCBusy++
	case ConfirmResultSkipped:
		r.SkippedClaim++
	case ConfirmResultMissingTx:
		// observed but left for an operator; no bucket beyond checked
		r.Checked++
	}
}
