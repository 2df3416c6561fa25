package pos

import (
	"github.com/angelmondragon/pdv-backend/internal/cart"
	"github.com/angelmondragon/pdv-backend/internal/checkout"
	"github.com/angelmondragon/pdv-backend/internal/sales"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
)

// Command names an operator action.
type Command string

const (
	CommandStartSale      Command = "start_sale"
	CommandEditSale       Command = "edit_sale"
	CommandLookupItem     Command = "lookup_item"
	CommandScan           Command = "scan"
	CommandFinalize       Command = "finalize"
	CommandRemoveLast     Command = "remove_last"
	CommandCancelSale     Command = "cancel_sale"
	CommandVoidLine       Command = "void_line"
	CommandHistory        Command = "history"
	CommandChangeQuantity Command = "change_quantity"
	CommandDecrement      Command = "decrement"
	CommandRegisterItem   Command = "register_item"
	CommandCloseAll       Command = "close_all"
	CommandSetBuyerID     Command = "set_buyer_id"
	CommandSetPayment     Command = "set_payment"
	CommandChooseReceipt  Command = "choose_receipt"
	CommandOpenScanner    Command = "open_scanner"
	CommandOpenDialog     Command = "open_dialog"
)

type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Notification is the toast shown to the operator after a command.
type Notification struct {
	Level   Level   `json:"level"`
	Command Command `json:"command"`
	Message string  `json:"message"`
}

// View is what the operator screen renders for a terminal.
type View struct {
	TerminalID    string              `json:"terminalId"`
	OperatorID    string              `json:"operatorId"`
	State         checkout.StateName  `json:"state"`
	SaleNumber    int64               `json:"saleNumber,omitempty"`
	Note          string              `json:"note,omitempty"`
	BuyerID       *string             `json:"buyerId,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod,omitempty"`
	Committing    bool                `json:"committing"`
	Starting      bool                `json:"starting"`
	Dialog        Dialog              `json:"dialog"`
	ScannerActive bool                `json:"scannerActive"`
	Cart          cart.Snapshot       `json:"cart"`
}

// Result is returned by every terminal command. Notification is nil when
// the command produced no visible feedback: Suppressed marks a scan swallowed
// by the debounce window and Dropped a lookup that finished after its sale
// was closed.
type Result struct {
	Notification *Notification   `json:"notification,omitempty"`
	View         View            `json:"view"`
	Line         *cart.Line      `json:"line,omitempty"`
	History      []sales.Summary `json:"history,omitempty"`
	Suppressed   bool            `json:"suppressed,omitempty"`
	Dropped      bool            `json:"dropped,omitempty"`
}

func info(cmd Command, msg string) *Notification {
	return &Notification{Level: LevelInfo, Command: cmd, Message: msg}
}

func warn(cmd Command, msg string) *Notification {
	return &Notification{Level: LevelWarn, Command: cmd, Message: msg}
}
