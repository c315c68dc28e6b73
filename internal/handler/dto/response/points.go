package response

import (
	"time"

	"travleap-core/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BalanceResponse struct {
	AccountID uuid.UUID `json:"account_id"`
	Balance   int       `json:"balance"`
}

type LedgerVerifyResponse struct {
	AccountID  uuid.UUID `json:"account_id"`
	Balance    int       `json:"balance"`
	Consistent bool      `json:"consistent"`
}

type LedgerEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	Amount        int        `json:"amount"`
	EntryType     string     `json:"entry_type"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	BalanceAfter  int        `json:"balance_after"`
	Note          string     `json:"note,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func FromLedgerRMs(rms []*readmodel.LedgerEntryRM) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(rms))
	for _, rm := range rms {
		var resp LedgerEntryResponse
		_ = copier.Copy(&resp, rm)
		out = append(out, resp)
	}
	return out
}
