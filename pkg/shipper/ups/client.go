// Package ups provides integration with the UPS shipping API, covering
// both the current OAuth REST API and the legacy XML API.
package ups

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/builder"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
	"github.com/tournevent/upslink/pkg/shipper/ups/parser"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const carrierName = "ups"

// trackConcurrency bounds TrackMany.
const trackConcurrency = 4

// Config holds UPS configuration.
type Config struct {
	AccountNumber string
	ClientID      string
	ClientSecret  string

	// Legacy access request credentials.
	LicenseNumber string
	UserID        string
	Password      string

	BaseURL         string
	TestMode        bool
	Generation      document.Generation
	DimensionLength int
	Timeout         time.Duration
	UseMock         bool
}

// Client is the UPS shipping gateway. It encodes builders, sends them
// through a Transport and parses the replies. Carrier-side failures are
// returned inside results, never as errors.
type Client struct {
	config    Config
	transport Transport
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new UPS client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var transport Transport

	if cfg.UseMock {
		transport = NewMockTransport()
	} else {
		transport = NewHTTPTransport(HTTPTransportConfig{
			BaseURL:       cfg.BaseURL,
			TestMode:      cfg.TestMode,
			AccountNumber: cfg.AccountNumber,
			ClientID:      cfg.ClientID,
			ClientSecret:  cfg.ClientSecret,
			Timeout:       cfg.Timeout,
		})
	}

	return NewWithTransport(cfg, transport, logger, tracer)
}

// NewWithTransport creates a new UPS client with a custom transport.
func NewWithTransport(cfg Config, transport Transport, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(carrierName)
	}
	return &Client{
		config:    cfg,
		transport: transport,
		logger:    logger,
		tracer:    tracer,
	}
}

// Generation returns the API generation the client talks to.
func (c *Client) Generation() document.Generation {
	return c.config.Generation
}

func (c *Client) options() builder.Options {
	return builder.Options{Generation: c.config.Generation, DimensionLength: c.config.DimensionLength}
}

func (c *Client) seed(b interface {
	AddAccessRequest(license, userID, password string)
}) {
	if c.config.Generation == document.XML && c.config.LicenseNumber != "" {
		b.AddAccessRequest(c.config.LicenseNumber, c.config.UserID, c.config.Password)
	}
}

// NewRateBuilder returns a rate builder for the client's generation, with
// legacy credentials attached when configured.
func (c *Client) NewRateBuilder() *builder.RateBuilder {
	b := builder.NewRateBuilder(c.options())
	c.seed(b)
	return b
}

// NewShipBuilder returns a ship builder for the client's generation.
func (c *Client) NewShipBuilder() *builder.ShipBuilder {
	b := builder.NewShipBuilder(c.options())
	c.seed(b)
	return b
}

// NewLabelRecoveryBuilder returns a label recovery builder for the client's
// generation.
func (c *Client) NewLabelRecoveryBuilder() *builder.LabelRecoveryBuilder {
	b := builder.NewLabelRecoveryBuilder(c.options())
	c.seed(b)
	return b
}

// Rates requests rates for the shipment described by b.
func (c *Client) Rates(ctx context.Context, b *builder.RateBuilder) (result *parser.RateResult, err error) {
	ctx, span := c.startSpan(ctx, "ups.Rates")
	defer func() { endSpan(span, err) }()

	c.logger.Ctx(ctx).Info("Requesting UPS rates",
		zap.String("generation", b.Generation().String()),
		zap.Int("package_count", b.PackageCount()),
	)

	resp, err := c.send(ctx, OpRate, b, Path(OpRate, b.Generation(), ""))
	if err != nil {
		return nil, err
	}
	result, err = parser.ParseRates(resp.Body, b.Generation())
	if err != nil {
		return nil, c.malformed(ctx, OpRate, err)
	}
	c.logResult(ctx, OpRate, result.Envelope)
	return result, nil
}

// RatesWith configures a fresh rate builder with configure and requests
// rates for it.
func (c *Client) RatesWith(ctx context.Context, configure func(*builder.RateBuilder) error) (*parser.RateResult, error) {
	b := c.NewRateBuilder()
	if err := configure(b); err != nil {
		return nil, err
	}
	return c.Rates(ctx, b)
}

// Ship creates the shipment described by b. The legacy API needs a
// confirm and an accept call; when confirm fails its result is returned
// and accept is never sent.
func (c *Client) Ship(ctx context.Context, b *builder.ShipBuilder) (result *parser.ShipResult, err error) {
	ctx, span := c.startSpan(ctx, "ups.Ship")
	defer func() { endSpan(span, err) }()

	c.logger.Ctx(ctx).Info("Creating UPS shipment",
		zap.String("generation", b.Generation().String()),
		zap.String("service_code", b.ServiceCode()),
		zap.Int("package_count", b.PackageCount()),
	)

	if b.Generation() == document.XML {
		return c.shipLegacy(ctx, b)
	}

	resp, err := c.send(ctx, OpShip, b, Path(OpShip, document.JSON, ""))
	if err != nil {
		return nil, err
	}
	result, err = parser.ParseShip(resp.Body, document.JSON)
	if err != nil {
		return nil, c.malformed(ctx, OpShip, err)
	}
	c.logResult(ctx, OpShip, result.Envelope)
	return result, nil
}

// ShipWith configures a fresh ship builder with configure and ships it.
func (c *Client) ShipWith(ctx context.Context, configure func(*builder.ShipBuilder) error) (*parser.ShipResult, error) {
	b := c.NewShipBuilder()
	if err := configure(b); err != nil {
		return nil, err
	}
	return c.Ship(ctx, b)
}

func (c *Client) shipLegacy(ctx context.Context, b *builder.ShipBuilder) (*parser.ShipResult, error) {
	resp, err := c.send(ctx, OpShip, b, Path(OpShip, document.XML, ""))
	if err != nil {
		return nil, err
	}
	confirm, err := parser.ParseShipConfirm(resp.Body, document.XML)
	if err != nil {
		return nil, c.malformed(ctx, OpShip, err)
	}
	c.logResult(ctx, OpShip, confirm.Envelope)
	if !confirm.Success() {
		return confirm, nil
	}

	accept := builder.NewShipAcceptBuilder(confirm.ShipmentDigest, b.Credentials())
	resp, err = c.send(ctx, OpShipAccept, accept, Path(OpShipAccept, document.XML, ""))
	if err != nil {
		return nil, err
	}
	result, err := parser.ParseShipAccept(resp.Body, document.XML)
	if err != nil {
		return nil, c.malformed(ctx, OpShipAccept, err)
	}
	c.logResult(ctx, OpShipAccept, result.Envelope)

	result.ShipmentDigest = confirm.ShipmentDigest
	if result.IdentificationNumber == "" {
		result.IdentificationNumber = confirm.IdentificationNumber
	}
	return result, nil
}

// RecoverLabel retrieves previously generated labels.
func (c *Client) RecoverLabel(ctx context.Context, b *builder.LabelRecoveryBuilder) (result *parser.LabelResult, err error) {
	ctx, span := c.startSpan(ctx, "ups.RecoverLabel")
	defer func() { endSpan(span, err) }()

	c.logger.Ctx(ctx).Info("Recovering UPS label",
		zap.String("generation", b.Generation().String()),
	)

	resp, err := c.send(ctx, OpLabelRecovery, b, Path(OpLabelRecovery, b.Generation(), ""))
	if err != nil {
		return nil, err
	}
	result, err = parser.ParseLabelRecovery(resp.Body, b.Generation())
	if err != nil {
		return nil, c.malformed(ctx, OpLabelRecovery, err)
	}
	c.logResult(ctx, OpLabelRecovery, result.Envelope)
	return result, nil
}

// RecoverLabelWith configures a fresh label recovery builder and sends it.
func (c *Client) RecoverLabelWith(ctx context.Context, configure func(*builder.LabelRecoveryBuilder) error) (*parser.LabelResult, error) {
	b := c.NewLabelRecoveryBuilder()
	if err := configure(b); err != nil {
		return nil, err
	}
	return c.RecoverLabel(ctx, b)
}

// Track returns the latest status of a tracking number.
func (c *Client) Track(ctx context.Context, number string) (result *parser.TrackResult, err error) {
	ctx, span := c.startSpan(ctx, "ups.Track", attribute.String("ups.tracking_number", number))
	defer func() { endSpan(span, err) }()

	b := builder.NewTrackBuilder(c.options())
	c.seed(b)
	b.AddTrackingNumber(number)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	c.logger.Ctx(ctx).Info("Tracking UPS shipment",
		zap.String("tracking_number", b.TrackingNumber()),
	)

	resp, err := c.send(ctx, OpTrack, b, Path(OpTrack, b.Generation(), b.TrackingNumber()))
	if err != nil {
		return nil, err
	}
	result, err = parser.ParseTrack(resp.Body, b.Generation())
	if err != nil {
		return nil, c.malformed(ctx, OpTrack, err)
	}
	if result.TrackingNumber == "" {
		result.TrackingNumber = b.TrackingNumber()
	}
	c.logResult(ctx, OpTrack, result.Envelope)
	return result, nil
}

// TrackMany tracks several numbers concurrently. Results are keyed by
// tracking number; the first error cancels the remaining lookups.
func (c *Client) TrackMany(ctx context.Context, numbers []string) (map[string]*parser.TrackResult, error) {
	results := make([]*parser.TrackResult, len(numbers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trackConcurrency)
	for i, number := range numbers {
		g.Go(func() error {
			result, err := c.Track(gctx, number)
			if err != nil {
				return fmt.Errorf("tracking %s: %w", number, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byNumber := make(map[string]*parser.TrackResult, len(numbers))
	for i, number := range numbers {
		byNumber[number] = results[i]
	}
	return byNumber, nil
}

// send encodes req and posts it. REST calls carry the bearer token; legacy
// calls require the access request credentials in the body.
func (c *Client) send(ctx context.Context, op Operation, req builder.Request, path string) (*APIResponse, error) {
	g := req.Generation()
	body, err := req.Encode()
	if err != nil {
		return nil, err
	}

	apiReq := &APIRequest{
		Operation:   op,
		Generation:  g,
		Method:      http.MethodPost,
		Path:        path,
		ContentType: g.ContentType(),
		Headers: map[string]string{
			"transId":        uuid.New().String(),
			"transactionSrc": "upslink",
		},
		Body: body,
	}

	if g == document.JSON {
		token, err := c.transport.AccessToken(ctx)
		if err != nil {
			c.logger.Ctx(ctx).Error("UPS authorization failed", zap.Error(err))
			return nil, err
		}
		apiReq.Headers["Authorization"] = "Bearer " + token
	} else if !req.Credentials().Complete() {
		return nil, shipper.AuthorizationFailed(carrierName, "Missing license number, user id, or password", nil)
	}

	resp, err := c.transport.Send(ctx, apiReq)
	if err != nil {
		c.logger.Ctx(ctx).Error("UPS API error",
			zap.String("operation", string(op)),
			zap.Error(err),
		)
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		err := shipper.NewShipperError(carrierName, shipper.CodeTransport,
			fmt.Sprintf("%s returned HTTP %d", op, resp.StatusCode)).
			WithStatusCode(resp.StatusCode).
			WithRetryable(true)
		c.logger.Ctx(ctx).Error("UPS API error",
			zap.String("operation", string(op)),
			zap.Error(err),
		)
		return nil, err
	}
	return resp, nil
}

func (c *Client) malformed(ctx context.Context, op Operation, err error) error {
	c.logger.Ctx(ctx).Error("UPS response could not be parsed",
		zap.String("operation", string(op)),
		zap.Error(err),
	)
	return err
}

func (c *Client) logResult(ctx context.Context, op Operation, env parser.Envelope) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("ups.status_code", env.StatusCode))
	if env.Success() {
		c.logger.Ctx(ctx).Debug("UPS request succeeded", zap.String("operation", string(op)))
		return
	}
	c.logger.Ctx(ctx).Warn("UPS request rejected",
		zap.String("operation", string(op)),
		zap.String("status_code", env.StatusCode),
		zap.String("error", env.ErrorDescription()),
	)
	span.SetAttributes(attribute.String("ups.error", env.ErrorDescription()))
}

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("ups.generation", c.config.Generation.String()))
	return c.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
