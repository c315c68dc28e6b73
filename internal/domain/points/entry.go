package points

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNegativeAmount  = errors.New("points amount cannot be negative")
	ErrInvalidEntry    = errors.New("invalid ledger entry type")
	ErrBalanceNegative = errors.New("ledger balance cannot go negative")
)

type EntryType string

const (
	EntryEarn   EntryType = "earn"
	EntryUse    EntryType = "use"
	EntryRefund EntryType = "refund"
)

func (t EntryType) String() string {
	return string(t)
}

func (t EntryType) IsValid() bool {
	switch t {
	case EntryEarn, EntryUse, EntryRefund:
		return true
	default:
		return false
	}
}

// Entry is one immutable row of the append-only points ledger. Amount is
// signed (positive = earn, negative = use/refund); BalanceAfter is the
// account balance immediately after this entry, so replaying all entries in
// creation order reproduces every recorded balance.
type Entry struct {
	id            uuid.UUID
	accountID     uuid.UUID
	amount        int
	entryType     EntryType
	reservationID *uuid.UUID
	balanceAfter  int
	note          string
	createdAt     time.Time
}

func (e *Entry) ID() uuid.UUID             { return e.id }
func (e *Entry) AccountID() uuid.UUID      { return e.accountID }
func (e *Entry) Amount() int               { return e.amount }
func (e *Entry) EntryType() EntryType      { return e.entryType }
func (e *Entry) ReservationID() *uuid.UUID { return e.reservationID }
func (e *Entry) BalanceAfter() int         { return e.balanceAfter }
func (e *Entry) Note() string              { return e.note }
func (e *Entry) CreatedAt() time.Time      { return e.createdAt }

func NewEarn(accountID uuid.UUID, amount, currentBalance int, reservationID uuid.UUID) (*Entry, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	id := reservationID
	return &Entry{
		id:            uuid.New(),
		accountID:     accountID,
		amount:        amount,
		entryType:     EntryEarn,
		reservationID: &id,
		balanceAfter:  currentBalance + amount,
	}, nil
}

func NewUse(accountID uuid.UUID, amount, currentBalance int, reservationID *uuid.UUID) (*Entry, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	if currentBalance-amount < 0 {
		return nil, ErrBalanceNegative
	}
	return &Entry{
		id:            uuid.New(),
		accountID:     accountID,
		amount:        -amount,
		entryType:     EntryUse,
		reservationID: reservationID,
		balanceAfter:  currentBalance - amount,
	}, nil
}

// NewRefund claws back an earlier earn, bounded by what is still on the
// account: the removed amount is min(originalEarn, currentBalance), never
// more. When the balance already fell below the original earn the entry's
// note records the shortfall for audit. A zero clawback is still a valid
// entry decision for the caller to skip.
func NewRefund(accountID uuid.UUID, originalEarn, currentBalance int, reservationID uuid.UUID) (*Entry, error) {
	if originalEarn < 0 {
		return nil, ErrNegativeAmount
	}
	clawback := originalEarn
	note := "refund of earned points"
	if currentBalance < originalEarn {
		clawback = currentBalance
		note = fmt.Sprintf("refund of earned points, %d point shortfall (balance below original earn)", originalEarn-clawback)
	}
	id := reservationID
	return &Entry{
		id:            uuid.New(),
		accountID:     accountID,
		amount:        -clawback,
		entryType:     EntryRefund,
		reservationID: &id,
		balanceAfter:  currentBalance - clawback,
		note:          note,
	}, nil
}

func Reconstruct(
	id, accountID uuid.UUID,
	amount int,
	entryType EntryType,
	reservationID *uuid.UUID,
	balanceAfter int,
	note string,
	createdAt time.Time,
) *Entry {
	return &Entry{
		id:            id,
		accountID:     accountID,
		amount:        amount,
		entryType:     entryType,
		reservationID: reservationID,
		balanceAfter:  balanceAfter,
		note:          note,
		createdAt:     createdAt,
	}
}

// Replay folds entries in order and checks every recorded balanceAfter.
// Used by tests and the consistency sweep; returns the final balance.
func Replay(entries []*Entry) (int, error) {
	balance := 0
	for _, e := range entries {
		balance += e.amount
		if balance < 0 {
			return 0, ErrBalanceNegative
		}
		if balance != e.balanceAfter {
			return 0, fmt.Errorf("ledger replay mismatch at entry %s: computed %d, recorded %d",
				e.id, balance, e.balanceAfter)
		}
	}
	return balance, nil
}
