package order

import (
	"testing"

	"github.com/ordercloud/order/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() CreateOrderRequest {
	return CreateOrderRequest{
		AccountID: "acc-1",
		Items: []orderitem.OrderItem{
			{ProductID: "p1", Quantity: 2, Price: decimal.NewFromFloat(9.99)},
		},
		ShippingAddress: "1 Main St",
	}
}

func TestValidateOK(t *testing.T) {
	req := validRequest()
	assert.NoError(t, req.Validate())
}

func TestValidateEmptyItems(t *testing.T) {
	req := validRequest()
	req.Items = nil

	err := req.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "items", verrs[0].Field)
}

func TestValidateBadItem(t *testing.T) {
	req := validRequest()
	req.Items = append(req.Items, orderitem.OrderItem{
		ProductID: "p2",
		Quantity:  0,
		Price:     decimal.NewFromFloat(1.00),
	})

	err := req.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "items[1]", verrs[0].Field)
	assert.Contains(t, verrs[0].Message, "quantity")
}

func TestValidatePriceBelowMinimum(t *testing.T) {
	req := validRequest()
	req.Items[0].Price = decimal.NewFromFloat(0.001)

	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestValidateMissingFields(t *testing.T) {
	req := CreateOrderRequest{}

	err := req.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{"accountId", "shippingAddress", "items"}, fields)
}

func TestComputeTotal(t *testing.T) {
	req := CreateOrderRequest{
		Items: []orderitem.OrderItem{
			{ProductID: "p1", Quantity: 2, Price: decimal.NewFromFloat(9.99)},
			{ProductID: "p2", Quantity: 1, Price: decimal.NewFromFloat(0.02)},
		},
	}

	assert.True(t, req.ComputeTotal().Equal(decimal.NewFromFloat(20.00)),
		"got %s", req.ComputeTotal())
}
