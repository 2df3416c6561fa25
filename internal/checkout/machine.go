package checkout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pdv-backend/internal/cart"
	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

var (
	ErrInvalidCommand = errors.New("command not allowed in current state")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidBuyerID = errors.New("buyer id must have 11 digits")
	ErrCommitInFlight = &PreconditionError{State: StateAwaitingPayment, Precondition: "wait for the sale to be saved"}
)

// PreconditionError is an ErrInvalidCommand naming what the operator must do
// first.
type PreconditionError struct {
	State        StateName
	Precondition string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s (%s): %s", ErrInvalidCommand, e.State, e.Precondition)
}

func (e *PreconditionError) Unwrap() error {
	return ErrInvalidCommand
}

// Sale is the snapshot handed to persistence when payment is chosen.
type Sale struct {
	Header
	BuyerID       *string             `json:"buyerId,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Lines         []cart.Line         `json:"lines"`
	Total         money.Cents         `json:"totalCents"`
}

// Receipt is the outcome of the last step of a sale.
type Receipt struct {
	SaleNumber int64
	Requested  bool
}

// Machine owns the checkout state and the cart of one terminal. It performs no
// I/O and is not safe for concurrent use.
type Machine struct {
	state State
	cart  *cart.Ledger
}

func NewMachine() *Machine {
	return &Machine{state: Idle{}, cart: cart.New()}
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Cart() cart.Snapshot {
	return m.cart.Snapshot()
}

// Start opens a sale under a freshly issued number.
func (m *Machine) Start(number int64, at time.Time, operatorID, terminalID string) (Open, error) {
	if _, ok := m.state.(Idle); !ok {
		return Open{}, invalid(m.state, "finish or cancel the current sale first")
	}
	m.cart.Clear()
	open := Open{Header: Header{
		Number:     number,
		CreatedAt:  at,
		OperatorID: operatorID,
		TerminalID: terminalID,
	}}
	m.state = open
	return open, nil
}

// SetNote replaces the free-text note of the open sale.
func (m *Machine) SetNote(note string) error {
	open, err := m.open()
	if err != nil {
		return err
	}
	open.Note = strings.TrimSpace(note)
	m.state = open
	return nil
}

func (m *Machine) Add(item catalog.Item) (cart.Line, error) {
	if _, err := m.open(); err != nil {
		return cart.Line{}, err
	}
	return m.cart.Add(item), nil
}

func (m *Machine) DecrementOrRemove(code string) (cart.Line, bool, error) {
	if _, err := m.open(); err != nil {
		return cart.Line{}, false, err
	}
	return m.cart.DecrementOrRemove(code)
}

func (m *Machine) SetQuantity(code string, n int) (cart.Line, error) {
	if _, err := m.open(); err != nil {
		return cart.Line{}, err
	}
	return m.cart.SetQuantity(code, n)
}

func (m *Machine) Void(code string) (cart.Line, error) {
	if _, err := m.open(); err != nil {
		return cart.Line{}, err
	}
	return m.cart.Void(code)
}

func (m *Machine) RemoveLast() (cart.Line, error) {
	if _, err := m.open(); err != nil {
		return cart.Line{}, err
	}
	return m.cart.RemoveLast()
}

// Finalize moves an open, non-empty sale to the buyer id step.
func (m *Machine) Finalize() error {
	open, err := m.open()
	if err != nil {
		return err
	}
	if m.cart.Len() == 0 {
		return ErrEmptyCart
	}
	m.state = AwaitingBuyerID{Header: open.Header}
	return nil
}

// SetBuyerID attaches a tax id, or declines one when raw is nil or blank.
func (m *Machine) SetBuyerID(raw *string) error {
	st, ok := m.state.(AwaitingBuyerID)
	if !ok {
		return invalid(m.state, "finalize the sale before informing the buyer")
	}
	var buyer *string
	if raw != nil && strings.TrimSpace(*raw) != "" {
		normalized, valid := NormalizeBuyerID(*raw)
		if !valid {
			return ErrInvalidBuyerID
		}
		buyer = &normalized
	}
	m.state = AwaitingPayment{Header: st.Header, BuyerID: buyer}
	return nil
}

// BeginCommit records the chosen payment method and returns the sale to be
// persisted. Until CommitSucceeded or CommitFailed is called every other
// command that would leave AwaitingPayment is rejected.
func (m *Machine) BeginCommit(method enums.PaymentMethod) (Sale, error) {
	st, ok := m.state.(AwaitingPayment)
	if !ok {
		return Sale{}, invalid(m.state, "inform the buyer before choosing payment")
	}
	if st.Committing {
		return Sale{}, ErrCommitInFlight
	}
	if !method.IsValid() {
		return Sale{}, invalid(m.state, fmt.Sprintf("choose one of the supported payment methods, not %q", method))
	}
	st.Committing = true
	st.Method = method
	m.state = st

	snap := m.cart.Snapshot()
	return Sale{
		Header:        st.Header,
		BuyerID:       st.BuyerID,
		PaymentMethod: method,
		Lines:         snap.Lines,
		Total:         snap.Total,
	}, nil
}

// CommitSucceeded moves to the receipt step. The cart is cleared: the
// persisted sale owns its lines now.
func (m *Machine) CommitSucceeded(at time.Time) (AwaitingReceiptChoice, error) {
	st, ok := m.state.(AwaitingPayment)
	if !ok || !st.Committing {
		return AwaitingReceiptChoice{}, invalid(m.state, "no sale is being saved")
	}
	next := AwaitingReceiptChoice{
		Header:      st.Header,
		BuyerID:     st.BuyerID,
		Method:      st.Method,
		Total:       m.cart.Total(),
		CommittedAt: at,
	}
	m.cart.Clear()
	m.state = next
	return next, nil
}

// CommitFailed returns to payment selection keeping number, cart and buyer.
func (m *Machine) CommitFailed() error {
	st, ok := m.state.(AwaitingPayment)
	if !ok || !st.Committing {
		return invalid(m.state, "no sale is being saved")
	}
	st.Committing = false
	st.Method = ""
	m.state = st
	return nil
}

// ChooseReceipt ends the sale.
func (m *Machine) ChooseReceipt(requested bool) (Receipt, error) {
	st, ok := m.state.(AwaitingReceiptChoice)
	if !ok {
		return Receipt{}, invalid(m.state, "there is no saved sale waiting for a receipt choice")
	}
	m.state = Idle{}
	return Receipt{SaleNumber: st.Number, Requested: requested}, nil
}

// Cancel abandons the sale without persisting it. The spent number is not
// reused. From AwaitingReceiptChoice the saved sale is kept and only the
// receipt choice is skipped.
func (m *Machine) Cancel() (Header, error) {
	switch st := m.state.(type) {
	case Idle:
		return Header{}, invalid(m.state, "there is no sale to cancel")
	case AwaitingPayment:
		if st.Committing {
			return Header{}, ErrCommitInFlight
		}
	}
	header, _ := HeaderOf(m.state)
	m.cart.Clear()
	m.state = Idle{}
	return header, nil
}

func (m *Machine) open() (Open, error) {
	open, ok := m.state.(Open)
	if !ok {
		if _, idle := m.state.(Idle); idle {
			return Open{}, invalid(m.state, "start a sale before changing items")
		}
		return Open{}, invalid(m.state, "items can only be changed while the sale is open")
	}
	return open, nil
}

func invalid(s State, precondition string) error {
	return &PreconditionError{State: s.Name(), Precondition: precondition}
}
