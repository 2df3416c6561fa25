package pos

import (
	"context"
	"fmt"
	"strings"
)

// Key is a function key of the POS keyboard.
type Key string

const (
	KeyF1  Key = "F1"
	KeyF2  Key = "F2"
	KeyF3  Key = "F3"
	KeyF4  Key = "F4"
	KeyF5  Key = "F5"
	KeyF6  Key = "F6"
	KeyF7  Key = "F7"
	KeyF8  Key = "F8"
	KeyF9  Key = "F9"
	KeyF10 Key = "F10"
	KeyEsc Key = "ESC"
)

// Dialog is the sub-dialog currently open on top of the checkout state.
type Dialog string

const (
	DialogNone         Dialog = ""
	DialogEditSale     Dialog = "edit_sale"
	DialogLookup       Dialog = "lookup"
	DialogVoidLine     Dialog = "void_line"
	DialogHistory      Dialog = "history"
	DialogQuantity     Dialog = "quantity"
	DialogRegisterItem Dialog = "register_item"
	DialogScanner      Dialog = "scanner"
)

// ParseKey accepts key names case-insensitively; "escape" is an alias of ESC.
func ParseKey(raw string) (Key, error) {
	k := Key(strings.ToUpper(strings.TrimSpace(raw)))
	if k == "ESCAPE" {
		k = KeyEsc
	}
	if _, ok := keyCommands[k]; !ok {
		return "", fmt.Errorf("%w: unknown key %q", ErrInvalidCommand, raw)
	}
	return k, nil
}

var keyCommands = map[Key]Command{
	KeyF1:  CommandStartSale,
	KeyF2:  CommandEditSale,
	KeyF3:  CommandLookupItem,
	KeyF4:  CommandFinalize,
	KeyF5:  CommandRemoveLast,
	KeyF6:  CommandCancelSale,
	KeyF7:  CommandVoidLine,
	KeyF8:  CommandHistory,
	KeyF9:  CommandChangeQuantity,
	KeyF10: CommandRegisterItem,
	KeyEsc: CommandCloseAll,
}

// CommandFor returns the command bound to a key.
func CommandFor(k Key) (Command, bool) {
	cmd, ok := keyCommands[k]
	return cmd, ok
}

// Press runs the command bound to a key. Keys whose command needs input
// open the matching dialog; the input is then sent with Type, SetNote,
// VoidLine, ChangeQuantity or RegisterItem.
func (t *Terminal) Press(ctx context.Context, k Key) (Result, error) {
	switch k {
	case KeyF1:
		return t.StartSale(ctx)
	case KeyF2:
		return t.openDialog(ctx, CommandEditSale, DialogEditSale, true, false)
	case KeyF3:
		return t.openDialog(ctx, CommandLookupItem, DialogLookup, true, false)
	case KeyF4:
		return t.Finalize(ctx)
	case KeyF5:
		return t.RemoveLast(ctx)
	case KeyF6:
		return t.CancelSale(ctx)
	case KeyF7:
		return t.openDialog(ctx, CommandVoidLine, DialogVoidLine, true, true)
	case KeyF8:
		return t.History(ctx)
	case KeyF9:
		return t.openDialog(ctx, CommandChangeQuantity, DialogQuantity, true, true)
	case KeyF10:
		return t.openDialog(ctx, CommandRegisterItem, DialogRegisterItem, false, false)
	case KeyEsc:
		return t.CloseAll(ctx)
	default:
		return Result{}, fmt.Errorf("%w: unknown key %q", ErrInvalidCommand, k)
	}
}
