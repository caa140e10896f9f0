// Package gateway implements the Provider interface against a remote card
// gateway API. All upstream failures are mapped onto the error taxonomy and
// returned inside envelopes; a circuit breaker sheds load when the gateway is
// persistently failing.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/frahmantamala/payment-orchestration/internal"
	riskmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/risk"
	txmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
	"github.com/frahmantamala/payment-orchestration/internal/provider"
	transactionpkg "github.com/frahmantamala/payment-orchestration/internal/transaction"
)

const providerName = "card_gateway"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
	configured bool
}

func NewClient(logger *slog.Logger) *Client {
	return &Client{
		logger: logger,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    providerName,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (c *Client) Name() string        { return providerName }
func (c *Client) DisplayName() string { return "Card Gateway" }

func (c *Client) SupportedPaymentMethods() []provider.PaymentMethodType {
	return []provider.PaymentMethodType{provider.MethodCard}
}

func (c *Client) Features() provider.Features {
	return provider.Features{
		ProcessPayments: true,
		Refunds:         true,
		PartialRefunds:  true,
		CapturePayments: true,
		CancelPayments:  true,
		ThreeDSecure:    true,
	}
}

func (c *Client) Initialize(_ context.Context, creds internal.ProviderCredentials) error {
	if err := creds.Validate(); err != nil {
		return internal.NewConfigurationError(fmt.Sprintf("%s credentials: %v", providerName, err))
	}
	timeout := creds.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c.baseURL = creds.APIURL
	c.apiKey = creds.APIKey
	c.httpClient = &http.Client{Timeout: timeout}
	c.configured = true
	return nil
}

func (c *Client) IsConfigured() bool { return c.configured }

type paymentPayload struct {
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	PaymentMethodID string            `json:"payment_method_id"`
	CustomerID      string            `json:"customer_id"`
	Capture         bool              `json:"capture"`
	IdempotencyKey  string            `json:"idempotency_key,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type paymentData struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	FeeAmount     *int64 `json:"fee_amount,omitempty"`
	DeclineCode   string `json:"decline_code,omitempty"`
	DeclineReason string `json:"decline_reason,omitempty"`
}

type paymentEnvelope struct {
	Data paymentData `json:"data"`
}

func (c *Client) ProcessPayment(ctx context.Context, req *provider.ProcessRequest) *internal.Result[*txmodel.Transaction] {
	return c.settle(ctx, req, true)
}

func (c *Client) AuthorizePayment(ctx context.Context, req *provider.ProcessRequest) *internal.Result[*txmodel.Transaction] {
	return c.settle(ctx, req, false)
}

func (c *Client) settle(ctx context.Context, req *provider.ProcessRequest, capture bool) *internal.Result[*txmodel.Transaction] {
	if !c.configured {
		return internal.Fail[*txmodel.Transaction](internal.NewConfigurationError(providerName + " is not initialized"))
	}

	payload := paymentPayload{
		Amount:          req.Amount,
		Currency:        req.Currency,
		PaymentMethodID: req.PaymentMethodID,
		CustomerID:      req.CustomerID,
		Capture:         capture,
		IdempotencyKey:  req.IdempotencyKey,
		Metadata:        req.Metadata,
	}

	var envelope paymentEnvelope
	if appErr := c.post(ctx, "/v1/payments", payload, &envelope); appErr != nil {
		return internal.Fail[*txmodel.Transaction](appErr)
	}

	switch envelope.Data.Status {
	case "declined":
		reason := envelope.Data.DeclineReason
		if reason == "" {
			reason = "payment declined by card network"
		}
		if envelope.Data.DeclineCode == "insufficient_funds" {
			return internal.Fail[*txmodel.Transaction](internal.NewInsufficientFundsError(reason))
		}
		return internal.Fail[*txmodel.Transaction](internal.NewPaymentDeclinedError(reason))
	case "authorized", "captured", "pending":
	default:
		return internal.Fail[*txmodel.Transaction](internal.NewProviderError(
			fmt.Sprintf("gateway returned unknown payment status %q", envelope.Data.Status), nil))
	}

	tx := c.buildTransaction(req, &envelope.Data, capture)
	return internal.OK(tx)
}

// buildTransaction materializes the authoritative record the orchestrator
// will persist. The gateway's view is captured in provider refs and the
// opening timeline event.
func (c *Client) buildTransaction(req *provider.ProcessRequest, data *paymentData, capture bool) *txmodel.Transaction {
	id := req.TransactionID
	if id == "" {
		id = "tx_" + uuid.New().String()
	}

	var idempotencyKey *string
	if req.IdempotencyKey != "" {
		k := req.IdempotencyKey
		idempotencyKey = &k
	}

	now := time.Now().UTC()
	tx := &txmodel.Transaction{
		ID:                id,
		Amount:            req.Amount,
		OriginalAmount:    req.Amount,
		Currency:          req.Currency,
		PaymentMethodID:   req.PaymentMethodID,
		PaymentMethodType: string(req.MethodType),
		CustomerID:        req.CustomerID,
		IsAuthorizedOnly:  !capture,
		IdempotencyKey:    idempotencyKey,
		ProviderRefs:      map[string]string{"payment": data.ID, "provider": providerName},
		Metadata:          req.Metadata,
		FeeAmount:         data.FeeAmount,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if data.FeeAmount != nil {
		net := req.Amount - *data.FeeAmount
		tx.NetAmount = &net
	}

	var status txmodel.Status
	var eventType string
	switch data.Status {
	case "authorized":
		status, eventType = txmodel.StatusAuthorized, "authorize"
	case "captured":
		status, eventType = txmodel.StatusCaptured, "process"
	default:
		status, eventType = txmodel.StatusPending, "submit"
	}
	transactionpkg.Begin(tx, status, eventType, map[string]string{"provider_ref": data.ID})
	return tx
}

func (c *Client) CapturePayment(ctx context.Context, tx *txmodel.Transaction, amount int64) *internal.Result[*txmodel.Transaction] {
	if !c.configured {
		return internal.Fail[*txmodel.Transaction](internal.NewConfigurationError(providerName + " is not initialized"))
	}

	ref := tx.ProviderRefs["payment"]
	payload := map[string]interface{}{"amount": amount}

	var envelope paymentEnvelope
	if appErr := c.post(ctx, fmt.Sprintf("/v1/payments/%s/capture", ref), payload, &envelope); appErr != nil {
		return internal.Fail[*txmodel.Transaction](appErr)
	}

	data := map[string]string{"provider_ref": envelope.Data.ID}
	if amount < tx.Amount {
		tx.Amount = amount
		data["partial"] = "true"
	}
	if appErr := transactionpkg.Transition(tx, txmodel.StatusCaptured, "capture", data); appErr != nil {
		return internal.Fail[*txmodel.Transaction](appErr)
	}
	return internal.OK(tx)
}

func (c *Client) CancelPayment(ctx context.Context, tx *txmodel.Transaction) *internal.Result[*txmodel.Transaction] {
	if !c.configured {
		return internal.Fail[*txmodel.Transaction](internal.NewConfigurationError(providerName + " is not initialized"))
	}

	ref := tx.ProviderRefs["payment"]
	var envelope paymentEnvelope
	if appErr := c.post(ctx, fmt.Sprintf("/v1/payments/%s/cancel", ref), struct{}{}, &envelope); appErr != nil {
		return internal.Fail[*txmodel.Transaction](appErr)
	}

	if appErr := transactionpkg.Transition(tx, txmodel.StatusCanceled, "cancel", map[string]string{
		"provider_ref": envelope.Data.ID,
	}); appErr != nil {
		return internal.Fail[*txmodel.Transaction](appErr)
	}
	return internal.OK(tx)
}

type refundData struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) RefundPayment(ctx context.Context, req *provider.RefundRequest) *internal.Result[*provider.RefundResult] {
	if !c.configured {
		return internal.Fail[*provider.RefundResult](internal.NewConfigurationError(providerName + " is not initialized"))
	}

	payload := map[string]interface{}{
		"payment":  req.ProviderRef,
		"amount":   req.Amount,
		"currency": req.Currency,
		"reason":   req.Reason,
	}

	var envelope struct {
		Data refundData `json:"data"`
	}
	if appErr := c.post(ctx, "/v1/refunds", payload, &envelope); appErr != nil {
		return internal.Fail[*provider.RefundResult](appErr)
	}

	status := txmodel.RefundStatusCompleted
	if envelope.Data.Status == "pending" {
		status = txmodel.RefundStatusPending
	}
	return internal.OK(&provider.RefundResult{
		ProviderRef: envelope.Data.ID,
		Status:      status,
	})
}

type riskData struct {
	Score           float64  `json:"score"`
	Level           string   `json:"level"`
	Recommendations []string `json:"recommendations"`
	Rules           []string `json:"rules"`
	Factors         []struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Impact      float64 `json:"impact"`
	} `json:"factors"`
}

// AssessRisk satisfies the optional risk capability by calling the gateway's
// risk endpoint.
func (c *Client) AssessRisk(ctx context.Context, req *provider.ProcessRequest) *internal.Result[*riskmodel.Assessment] {
	if !c.configured {
		return internal.Fail[*riskmodel.Assessment](internal.NewConfigurationError(providerName + " is not initialized"))
	}

	payload := map[string]interface{}{
		"amount":            req.Amount,
		"currency":          req.Currency,
		"payment_method_id": req.PaymentMethodID,
		"customer_id":       req.CustomerID,
	}

	var envelope struct {
		Data riskData `json:"data"`
	}
	if appErr := c.post(ctx, "/v1/risk/assessments", payload, &envelope); appErr != nil {
		return internal.Fail[*riskmodel.Assessment](appErr)
	}

	assessment := &riskmodel.Assessment{
		Score:          envelope.Data.Score,
		Level:          riskmodel.Level(envelope.Data.Level),
		TriggeredRules: envelope.Data.Rules,
		Source:         "provider:" + providerName,
		AssessedAt:     time.Now().UTC(),
	}
	for _, f := range envelope.Data.Factors {
		assessment.Factors = append(assessment.Factors, riskmodel.Factor{
			Name:        f.Name,
			Description: f.Description,
			Impact:      f.Impact,
		})
	}
	for _, r := range envelope.Data.Recommendations {
		assessment.Recommendations = append(assessment.Recommendations, riskmodel.Recommendation(r))
	}
	return internal.OK(assessment)
}

// post sends one gateway call through the circuit breaker and decodes the
// response into out, translating transport and HTTP failures into the
// taxonomy.
func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) *internal.AppError {
	body, err := json.Marshal(payload)
	if err != nil {
		return internal.NewPaymentError("failed to marshal gateway request", err)
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, internal.NewPaymentError("failed to build gateway request", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, internal.NewTimeoutError("gateway did not respond in time")
			}
			return nil, internal.NewProviderError("gateway request failed", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, internal.NewProviderError("failed to read gateway response", err)
		}

		if appErr := c.statusError(resp, respBody); appErr != nil {
			return nil, appErr
		}
		return respBody, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return internal.NewProviderError("gateway circuit breaker open", err)
		}
		return internal.Normalize(err)
	}

	if err := json.Unmarshal(raw.([]byte), out); err != nil {
		return internal.NewProviderError("failed to decode gateway response", err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response, body []byte) *internal.AppError {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusPaymentRequired:
		return internal.NewPaymentDeclinedError(messageFrom(body, "payment declined"))
	case resp.StatusCode == http.StatusNotFound:
		return internal.NewPaymentMethodError(messageFrom(body, "payment method rejected by gateway"))
	case resp.StatusCode == http.StatusUnauthorized:
		return internal.NewAuthenticationError("gateway rejected credentials")
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := 1
		if s := resp.Header.Get("Retry-After"); s != "" {
			fmt.Sscanf(s, "%d", &retryAfter)
		}
		return internal.NewRateLimitError("gateway is throttling requests", retryAfter)
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return internal.NewTimeoutError("gateway timed out")
	default:
		c.logger.Error("gateway returned error",
			"status", resp.StatusCode,
			"body", string(body))
		return internal.NewProviderError(fmt.Sprintf("gateway error: status %d", resp.StatusCode), nil)
	}
}

func messageFrom(body []byte, fallback string) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return fallback
}
