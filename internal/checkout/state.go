// Package checkout sequences a sale from start to receipt choice.
package checkout

import (
	"time"

	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

// StateName identifies a checkout state on the wire and in logs.
type StateName string

const (
	StateIdle                  StateName = "IDLE"
	StateOpen                  StateName = "OPEN"
	StateAwaitingBuyerID       StateName = "AWAITING_BUYER_ID"
	StateAwaitingPayment       StateName = "AWAITING_PAYMENT"
	StateAwaitingReceiptChoice StateName = "AWAITING_RECEIPT_CHOICE"
)

// State is one of Idle, Open, AwaitingBuyerID, AwaitingPayment or
// AwaitingReceiptChoice. Each variant carries only the fields that exist at
// that step.
type State interface {
	Name() StateName
	isState()
}

// Header is what every open sale knows from the moment it starts.
type Header struct {
	Number     int64     `json:"saleNumber"`
	CreatedAt  time.Time `json:"createdAt"`
	OperatorID string    `json:"operatorId"`
	TerminalID string    `json:"terminalId"`
	Note       string    `json:"note,omitempty"`
}

type Idle struct{}

type Open struct {
	Header
}

type AwaitingBuyerID struct {
	Header
}

// AwaitingPayment has Committing set while the commit for Method is in flight.
type AwaitingPayment struct {
	Header
	BuyerID    *string
	Committing bool
	Method     enums.PaymentMethod
}

type AwaitingReceiptChoice struct {
	Header
	BuyerID     *string
	Method      enums.PaymentMethod
	Total       money.Cents
	CommittedAt time.Time
}

func (Idle) Name() StateName                  { return StateIdle }
func (Open) Name() StateName                  { return StateOpen }
func (AwaitingBuyerID) Name() StateName       { return StateAwaitingBuyerID }
func (AwaitingPayment) Name() StateName       { return StateAwaitingPayment }
func (AwaitingReceiptChoice) Name() StateName { return StateAwaitingReceiptChoice }

func (Idle) isState()                  {}
func (Open) isState()                  {}
func (AwaitingBuyerID) isState()       {}
func (AwaitingPayment) isState()       {}
func (AwaitingReceiptChoice) isState() {}

// HeaderOf returns the sale header of any non-idle state.
func HeaderOf(s State) (Header, bool) {
	switch st := s.(type) {
	case Open:
		return st.Header, true
	case AwaitingBuyerID:
		return st.Header, true
	case AwaitingPayment:
		return st.Header, true
	case AwaitingReceiptChoice:
		return st.Header, true
	default:
		return Header{}, false
	}
}
