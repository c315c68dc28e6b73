package request

import (
	"time"

	"travleap-core/internal/usecase"

	"github.com/google/uuid"
)

type ReserveRequest struct {
	ResourceID uuid.UUID  `json:"resource_id" binding:"required"`
	Start      time.Time  `json:"start" binding:"required"`
	End        *time.Time `json:"end"`
	Units      int        `json:"units" binding:"required,min=1"`
}

func (r *ReserveRequest) ToCommand() usecase.ReserveCommand {
	return usecase.ReserveCommand{
		ResourceID: r.ResourceID,
		Start:      r.Start,
		End:        r.End,
		Units:      r.Units,
	}
}

type ConfirmRequest struct {
	PaymentProof string `json:"payment_proof" binding:"required,max=255"`
}

type ExtendRequest struct {
	NewEnd time.Time `json:"new_end" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}
