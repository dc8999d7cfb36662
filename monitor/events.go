package monitor

import (
	"github.com/yourfin-enon/trading-sdk/positions"
	"github.com/yourfin-enon/trading-sdk/symbols"
)

// EventKind discriminates the Event union returned from Update.
type EventKind int

const (
	PositionClosed EventKind = iota
	PositionActivated
	PositionMarginCall
	PositionLocked
	WalletMarginCall
)

func (k EventKind) String() string {
	switch k {
	case PositionClosed:
		return "PositionClosed"
	case PositionActivated:
		return "PositionActivated"
	case PositionMarginCall:
		return "PositionMarginCall"
	case PositionLocked:
		return "PositionLocked"
	case WalletMarginCall:
		return "WalletMarginCall"
	default:
		return "Unknown"
	}
}

// LockReason discriminates why a position entered locked_ids.
type LockReason int

const (
	// TopUp signals that a position has entered its configured loss band
	// and is waiting for an operator-approved margin addition.
	TopUp LockReason = iota
	// TopUpsCanceled signals that one or more aged top-ups were unwound
	// after the price recovered favorably.
	TopUpsCanceled
	// ActivationPending signals a Pending position whose desire price has
	// been reached but whose invest assets could not yet be reserved.
	ActivationPending
)

func (r LockReason) String() string {
	switch r {
	case TopUp:
		return "TopUp"
	case TopUpsCanceled:
		return "TopUpsCanceled"
	case ActivationPending:
		return "ActivationPending"
	default:
		return "Unknown"
	}
}

// LockInfo carries the snapshot needed by the external top-up/activation
// approval workflow for a PositionLocked event.
type LockInfo struct {
	PositionID symbols.PositionID
	Reason     LockReason

	// Active is set for TopUp and TopUpsCanceled.
	Active *positions.ActivePosition
	// Pending is set for ActivationPending.
	Pending *positions.PendingPosition
	// Canceled is set for TopUpsCanceled.
	Canceled []positions.CanceledTopUp
}

// WalletMarginCallInfo carries the snapshot for an edge-triggered
// WalletMarginCall event.
type WalletMarginCallInfo struct {
	WalletID    symbols.WalletID
	TraderID    string
	LossPercent float64
	PnL         float64
}

// Event is the tagged-union item of the stream returned from Update.
// Callers type-switch on Kind to read the matching payload field.
type Event struct {
	Kind EventKind

	Closed     *positions.ClosedPosition
	Activated  *positions.ActivePosition
	MarginCall *positions.ActivePosition
	Lock       *LockInfo
	Wallet     *WalletMarginCallInfo
}
