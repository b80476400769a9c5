// Package mock provides a mock shipper implementation for testing.
package mock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/upslink/pkg/shipper"
)

// Client is a mock shipper for testing.
type Client struct {
	name string

	// FailWith makes every operation return this error when set.
	FailWith error
}

// New creates a new mock shipper.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// GetQuote returns mock shipping quotes.
func (c *Client) GetQuote(ctx context.Context, req *shipper.QuoteRequest) (*shipper.QuoteResponse, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}

	now := time.Now()
	expiresAt := now.Add(30 * time.Minute)
	standardDelivery := now.Add(5 * 24 * time.Hour)
	expressDelivery := now.Add(2 * 24 * time.Hour)

	return &shipper.QuoteResponse{
		QuoteID:   fmt.Sprintf("%s-quote-%s", c.name, uuid.New().String()[:8]),
		ExpiresAt: expiresAt,
		Rates: []shipper.RateOption{
			{
				RateID:            fmt.Sprintf("%s-11-%d", c.name, now.Unix()),
				Carrier:           c.name,
				ServiceCode:       "11",
				ServiceName:       fmt.Sprintf("%s Standard", c.name),
				ServiceType:       shipper.ServiceStandard,
				TotalPrice:        shipper.NewMoney(15.82, "GBP"),
				TransitDays:       5,
				EstimatedDelivery: &standardDelivery,
				ExpiresAt:         expiresAt,
			},
			{
				RateID:            fmt.Sprintf("%s-07-%d", c.name, now.Unix()),
				Carrier:           c.name,
				ServiceCode:       "07",
				ServiceName:       fmt.Sprintf("%s Express", c.name),
				ServiceType:       shipper.ServiceExpress,
				TotalPrice:        shipper.NewMoney(29.95, "GBP"),
				TransitDays:       2,
				EstimatedDelivery: &expressDelivery,
				ExpiresAt:         expiresAt,
				Guaranteed:        true,
			},
		},
	}, nil
}

// CreateOrder creates a mock shipping order.
func (c *Client) CreateOrder(ctx context.Context, req *shipper.CreateOrderRequest) (*shipper.CreateOrderResponse, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}

	trackingNumber := mockTrackingNumber()
	format := req.LabelFormat
	if format == "" {
		format = shipper.LabelGIF
	}

	return &shipper.CreateOrderResponse{
		OrderID:        trackingNumber,
		TrackingNumber: trackingNumber,
		Status:         shipper.StatusConfirmed,
		Carrier:        c.name,
		ServiceName:    fmt.Sprintf("%s Standard", c.name),
		TotalCharged:   shipper.NewMoney(15.82, "GBP"),
		Labels: []shipper.Label{
			{TrackingNumber: trackingNumber, Format: format, URL: fmt.Sprintf("https://labels.%s.mock/%s.%s", c.name, trackingNumber, format)},
		},
	}, nil
}

// GetLabel returns a mock shipping label.
func (c *Client) GetLabel(ctx context.Context, req *shipper.GetLabelRequest) (*shipper.GetLabelResponse, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}

	format := req.Format
	if format == "" {
		format = shipper.LabelPDF
	}

	return &shipper.GetLabelResponse{
		OrderID: req.OrderID,
		Label: shipper.Label{
			TrackingNumber: req.OrderID,
			Format:         format,
			URL:            fmt.Sprintf("https://labels.%s.mock/%s.%s", c.name, req.OrderID, format),
		},
	}, nil
}

// Track returns a delivered status for any tracking number.
func (c *Client) Track(ctx context.Context, req *shipper.TrackRequest) (*shipper.TrackResponse, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	if req.TrackingNumber == "" {
		return nil, shipper.InvalidAttribute(c.name, "Tracking number is required")
	}

	delivered := time.Now().Truncate(24 * time.Hour)
	return &shipper.TrackResponse{
		TrackingNumber: req.TrackingNumber,
		Status:         shipper.StatusDelivered,
		StatusCode:     "D",
		Description:    "DELIVERED",
		StatusDate:     delivered,
		Events: []shipper.TrackingEvent{
			{Timestamp: delivered, Description: "DELIVERED", Status: shipper.StatusDelivered, CarrierCode: "D"},
		},
	}, nil
}

func mockTrackingNumber() string {
	return "1Z" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
}
