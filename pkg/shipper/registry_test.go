package shipper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/mock"
)

func TestRegistry_Register(t *testing.T) {
	registry := shipper.NewRegistry()

	mockShipper := mock.New("test-shipper")
	registry.Register(mockShipper)

	got, err := registry.Get("test-shipper")
	require.NoError(t, err, "shipper should be registered")
	assert.Equal(t, "test-shipper", got.Name())
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := shipper.NewRegistry()

	// Register first shipper
	registry.Register(mock.New("test-shipper"))
	assert.Equal(t, 1, registry.Count())

	// Register again with same name should override
	registry.Register(mock.New("test-shipper"))
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := shipper.NewRegistry()

	_, err := registry.Get("nonexistent")
	assert.Error(t, err, "should return error for unregistered shipper")
	assert.True(t, errors.Is(err, shipper.ErrCarrierNotFound))
}

func TestRegistry_All(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("shipper-a"))
	registry.Register(mock.New("shipper-b"))
	registry.Register(mock.New("shipper-c"))

	all := registry.All()
	assert.Len(t, all, 3)
}

func TestRegistry_Names(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("ups"))
	registry.Register(mock.New("dhl"))
	registry.Register(mock.New("fedex"))

	assert.Equal(t, []string{"dhl", "fedex", "ups"}, registry.Names())
}

func TestRegistry_Count(t *testing.T) {
	registry := shipper.NewRegistry()
	assert.Equal(t, 0, registry.Count())

	registry.Register(mock.New("shipper-a"))
	assert.Equal(t, 1, registry.Count())

	registry.Register(mock.New("shipper-b"))
	assert.Equal(t, 2, registry.Count())
}

func TestRegistry_GetAllQuotes(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("ups"))
	registry.Register(mock.New("dhl"))

	req := &shipper.QuoteRequest{
		Origin: shipper.Address{
			Name:         "Sender",
			Line1:        "123 Main St",
			City:         "Swansea",
			ProvinceCode: "Wales",
			PostalCode:   "SA1 1DA",
			CountryCode:  "GB",
			Phone:        "01792 123456",
		},
		Destination: shipper.Address{
			Name:         "Receiver",
			Line1:        "456 Oak Ave",
			City:         "London",
			ProvinceCode: "England",
			PostalCode:   "WC2H 8AG",
			CountryCode:  "GB",
			Phone:        "0207 031 3000",
		},
		Packages: []shipper.Package{
			{
				Length: 10,
				Width:  10,
				Height: 10,
				Weight: 5,
			},
		},
	}

	ctx := context.Background()
	results, errs := registry.GetAllQuotes(ctx, req)

	assert.Empty(t, errs, "should have no errors from mock shippers")
	assert.Len(t, results, 2, "should have results from both shippers")

	for _, result := range results {
		assert.NotEmpty(t, result.QuoteID)
		assert.NotEmpty(t, result.Rates)
	}
}

func TestRegistry_GetAllQuotes_Empty(t *testing.T) {
	registry := shipper.NewRegistry()

	req := &shipper.QuoteRequest{
		Origin: shipper.Address{
			Name: "Test",
		},
	}

	ctx := context.Background()
	results, errs := registry.GetAllQuotes(ctx, req)

	assert.Empty(t, results, "should return empty results for empty registry")
	assert.NotEmpty(t, errs, "should return error for empty registry")
}

func TestRegistry_GetQuotesFromCarriers_Success(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("ups"))
	registry.Register(mock.New("dhl"))
	registry.Register(mock.New("fedex"))

	req := &shipper.QuoteRequest{
		Origin:      shipper.Address{PostalCode: "M5V 1A1"},
		Destination: shipper.Address{PostalCode: "V6B 2W2"},
		Packages:    []shipper.Package{{Weight: 5}},
	}

	ctx := context.Background()
	// Only request quotes from 2 carriers
	results, errs := registry.GetQuotesFromCarriers(ctx, req, []string{"ups", "fedex"})

	assert.Empty(t, errs)
	assert.Len(t, results, 2)
}

func TestRegistry_GetQuotesFromCarriers_EmptyCarriers(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("ups"))
	registry.Register(mock.New("dhl"))

	req := &shipper.QuoteRequest{
		Origin:      shipper.Address{PostalCode: "M5V 1A1"},
		Destination: shipper.Address{PostalCode: "V6B 2W2"},
	}

	ctx := context.Background()
	// Empty carriers list should get all quotes
	results, errs := registry.GetQuotesFromCarriers(ctx, req, []string{})

	assert.Empty(t, errs)
	assert.Len(t, results, 2, "should get quotes from all carriers when empty list")
}

func TestRegistry_GetQuotesFromCarriers_NotFound(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("ups"))

	req := &shipper.QuoteRequest{
		Origin:      shipper.Address{PostalCode: "M5V 1A1"},
		Destination: shipper.Address{PostalCode: "V6B 2W2"},
	}

	ctx := context.Background()
	results, errs := registry.GetQuotesFromCarriers(ctx, req, []string{"nonexistent"})

	assert.Len(t, results, 0)
	assert.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], shipper.ErrCarrierNotFound))
}

func TestRegistry_GetAllQuotes_PartialFailure(t *testing.T) {
	registry := shipper.NewRegistry()

	failing := mock.New("dhl")
	failing.FailWith = shipper.ErrServiceUnavailable
	registry.Register(mock.New("ups"))
	registry.Register(failing)

	results, errs := registry.GetAllQuotes(context.Background(), &shipper.QuoteRequest{})

	assert.Len(t, results, 1)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], shipper.ErrServiceUnavailable))
	assert.Contains(t, errs[0].Error(), "dhl")
}

func TestRegistry_Track(t *testing.T) {
	registry := shipper.NewRegistry()
	registry.Register(mock.New("ups"))

	resp, err := registry.Track(context.Background(), "ups", &shipper.TrackRequest{TrackingNumber: "1Z12345E6692804405"})

	require.NoError(t, err)
	assert.Equal(t, shipper.StatusDelivered, resp.Status)
	assert.Equal(t, "1Z12345E6692804405", resp.TrackingNumber)
}

func TestRegistry_Track_UnknownCarrier(t *testing.T) {
	registry := shipper.NewRegistry()

	_, err := registry.Track(context.Background(), "ups", &shipper.TrackRequest{TrackingNumber: "1Z"})

	assert.True(t, errors.Is(err, shipper.ErrCarrierNotFound))
}

func TestRegistry_CreateOrderAndLabel(t *testing.T) {
	registry := shipper.NewRegistry()
	registry.Register(mock.New("ups"))
	ctx := context.Background()

	order, err := registry.CreateOrder(ctx, "ups", &shipper.CreateOrderRequest{RateID: "ups-11-1"})
	require.NoError(t, err)
	require.Len(t, order.Labels, 1)

	label, err := registry.GetLabel(ctx, "ups", &shipper.GetLabelRequest{OrderID: order.OrderID})
	require.NoError(t, err)
	assert.Equal(t, order.TrackingNumber, label.Label.TrackingNumber)
}
