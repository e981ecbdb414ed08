package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-request-api/internal/common"
)

func TestContactValidate_RequiresBothMineFields(t *testing.T) {
	contact := Contact{PersonId: 1, Name: "A", MineGroup: "G"}

	err := contact.Validate()

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "contact.mineName", shapeErr.Field)
}

func TestContactValidate_Complete(t *testing.T) {
	contact := Contact{PersonId: 1, Name: "A", MineGroup: "G", MineName: "M"}

	assert.NoError(t, contact.Validate())
}

func TestLineItemValidate_ZeroQuantity(t *testing.T) {
	item := LineItem{ProductId: 1, Name: "P", Quantity: 0}

	err := item.Validate()

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "lineItem.quantity", shapeErr.Field)
}

func TestLineItemValidate_NegativePrice(t *testing.T) {
	item := LineItem{ProductId: 1, Name: "P", Quantity: 1, UnitPrice: -1}

	assert.Error(t, item.Validate())
}

func TestRequestValidate_SubmittedNeedsDealId(t *testing.T) {
	request := Request{Status: common.Submitted}

	var shapeErr *ShapeError
	require.ErrorAs(t, request.Validate(), &shapeErr)
	assert.Equal(t, "request.pipedriveDealId", shapeErr.Field)
}

func TestRequestValidate_DraftMustNotCarryDealId(t *testing.T) {
	dealId := 1
	request := Request{Status: common.Draft, PipedriveDealId: &dealId}

	assert.Error(t, request.Validate())
}

func TestRequestValidate_UnknownStatus(t *testing.T) {
	request := Request{Status: "archived"}

	assert.Error(t, request.Validate())
}

func TestRequestValidate_ValidDraft(t *testing.T) {
	request := Request{
		Status:  common.Draft,
		Contact: &Contact{PersonId: 1, Name: "A", MineGroup: "G", MineName: "M"},
		LineItems: []LineItem{
			{ProductId: 1, Name: "P", Quantity: 2, UnitPrice: 5, TotalPrice: 10},
		},
	}

	assert.NoError(t, request.Validate())
}
