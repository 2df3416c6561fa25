package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pdv-backend/internal/pos"
	pkgerrors "github.com/angelmondragon/pdv-backend/pkg/errors"
	"github.com/angelmondragon/pdv-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusCreated, w.Code)
	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "world", body.Data.(map[string]any)["hello"])
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), nil, w, err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeValidation), body.Error.Code)
	assert.Equal(t, "bad input", body.Error.Message)
	assert.NotNil(t, body.Error.Details)
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
	assert.Nil(t, body.Error.Details)
}

func TestFromDomainCodes(t *testing.T) {
	cases := []struct {
		err    error
		code   pkgerrors.Code
		status int
	}{
		{fmt.Errorf("%w: 999", pos.ErrItemNotFound), pkgerrors.CodeNotFound, http.StatusNotFound},
		{pos.ErrInvalidCommand, pkgerrors.CodeStateConflict, http.StatusUnprocessableEntity},
		{pos.ErrEmptyCart, pkgerrors.CodeStateConflict, http.StatusUnprocessableEntity},
		{pos.ErrInvalidBuyerID, pkgerrors.CodeValidation, http.StatusBadRequest},
		{fmt.Errorf("%w: reset", pos.ErrPersistFailed), pkgerrors.CodePersistence, http.StatusBadGateway},
		{pos.ErrCatalogUnavailable, pkgerrors.CodeDependency, http.StatusServiceUnavailable},
		{pos.ErrSequencerUnavailable, pkgerrors.CodeDependency, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: %w", pos.ErrCatalogUnavailable, context.DeadlineExceeded), pkgerrors.CodeTimeout, http.StatusGatewayTimeout},
		{pos.ErrItemExists, pkgerrors.CodeConflict, http.StatusConflict},
		{pos.ErrTerminalInUse, pkgerrors.CodeConflict, http.StatusConflict},
		{pos.ErrTerminalNotFound, pkgerrors.CodeNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			typed := FromDomain(tc.err, "")
			assert.Equal(t, tc.code, typed.Code())
			assert.Equal(t, tc.status, pkgerrors.MetadataFor(typed.Code()).HTTPStatus)
			assert.ErrorIs(t, typed, tc.err)
		})
	}
}

func TestFromDomainKeepsOperatorMessage(t *testing.T) {
	typed := FromDomain(pos.ErrEmptyCart, "add at least one item before finalizing")

	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, typed)

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "add at least one item before finalizing", body.Error.Message)
}

func TestWriteErrorFlagsRetryableFailures(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, FromDomain(fmt.Errorf("%w: reset", pos.ErrPersistFailed), "choose the payment method again"))

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodePersistence), body.Error.Code)
	assert.Equal(t, pkgerrors.MetadataFor(pkgerrors.CodePersistence).Retryable, body.Error.Retryable)

	w = httptest.NewRecorder()
	WriteError(context.Background(), nil, w, FromDomain(pos.ErrEmptyCart, ""))
	body = types.ErrorEnvelope{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.False(t, body.Error.Retryable)
}
