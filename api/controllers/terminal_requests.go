package controllers

import (
	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pdv-backend/pkg/errors"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

type codeRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=9999"`
}

type noteRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// buyerRequest skips the buyer id when it is omitted or null.
type buyerRequest struct {
	BuyerID *string `json:"buyerId" validate:"omitempty,max=20"`
}

type paymentRequest struct {
	Method string `json:"method" validate:"required"`
}

func (p paymentRequest) method() (enums.PaymentMethod, error) {
	method, err := enums.ParsePaymentMethod(p.Method)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method").
			WithDetails(map[string]any{"method": p.Method, "allowed": enums.PaymentMethods()})
	}
	return method, nil
}

type receiptRequest struct {
	Requested *bool `json:"requested" validate:"required"`
}

type registerItemRequest struct {
	Code        string `json:"code" validate:"required,max=64"`
	Description string `json:"description" validate:"required,max=120"`
	Unit        string `json:"unit" validate:"omitempty,max=4"`
	UnitPrice   string `json:"unitPrice" validate:"required"`
}

func (p registerItemRequest) toItem() (catalog.Item, error) {
	price, err := money.Parse(p.UnitPrice)
	if err != nil {
		return catalog.Item{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price").
			WithDetails(map[string]string{"unitPrice": err.Error()})
	}
	unit, err := enums.ParseProductUnit(p.Unit)
	if err != nil {
		return catalog.Item{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit").
			WithDetails(map[string]string{"unit": err.Error()})
	}
	return catalog.Item{
		Code:        p.Code,
		Description: p.Description,
		Unit:        unit,
		UnitPrice:   price,
	}, nil
}
