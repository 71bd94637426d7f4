package sslcommerz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/sajidhasan/farmcart-backend/pkg/config"
	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
)

const (
	sandboxBaseURL    = "https://sandbox.sslcommerz.com"
	productionBaseURL = "https://securepay.sslcommerz.com"

	sessionPath    = "/gwprocess/v4/api.php"
	validationPath = "/validator/api/validationserverAPI.php"

	// Statuses the gateway reports on the validation API.
	StatusValid     = "VALID"
	StatusValidated = "VALIDATED"
)

var (
	errCredentialsRequired = errors.New("sslcommerz store credentials are required")
	errLoggerRequired      = errors.New("sslcommerz logger is required")
)

// Client wraps the SSLCommerz hosted-checkout API with centralized auth,
// logging, and error mapping.
type Client struct {
	storeID       string
	storePassword string
	baseURL       string
	httpClient    *http.Client
	logger        *logger.Logger
}

// SessionRequest carries everything needed to open a hosted payment session.
type SessionRequest struct {
	TransactionID string
	Amount        string
	Currency      string

	SuccessURL string
	FailURL    string
	CancelURL  string
	IPNURL     string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	AddressLine   string
	City          string

	ProductName     string
	ProductCategory string
	ItemCount       int
}

// SessionResponse is the gateway's answer to a session init.
type SessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// ValidationResponse is the gateway's answer to a transaction validation.
type ValidationResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"tran_id"`
	ValID         string `json:"val_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	BankTranID    string `json:"bank_tran_id"`
	CardType      string `json:"card_type"`
	RiskLevel     string `json:"risk_level"`
}

// Verified reports whether the gateway accepted the transaction.
func (v ValidationResponse) Verified() bool {
	return v.Status == StatusValid || v.Status == StatusValidated
}

// NewClient initializes the SSLCommerz wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.SSLCommerzConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if !cfg.HasCredentials() {
		return nil, errCredentialsRequired
	}

	baseURL := productionBaseURL
	if cfg.Sandbox {
		baseURL = sandboxBaseURL
	}

	c := &Client{
		storeID:       strings.TrimSpace(cfg.StoreID),
		storePassword: strings.TrimSpace(cfg.StorePassword),
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logg,
	}

	logg.Info(ctx, "sslcommerz client initialized")
	return c, nil
}

// StoreID returns the configured store id.
func (c *Client) StoreID() string {
	if c == nil {
		return ""
	}
	return c.storeID
}

// InitSession opens a hosted checkout session and returns the redirect URL
// the customer must visit to pay.
func (c *Client) InitSession(ctx context.Context, req SessionRequest) (*SessionResponse, error) {
	form := url.Values{}
	form.Set("store_id", c.storeID)
	form.Set("store_passwd", c.storePassword)
	form.Set("tran_id", req.TransactionID)
	form.Set("total_amount", req.Amount)
	form.Set("currency", req.Currency)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	if req.IPNURL != "" {
		form.Set("ipn_url", req.IPNURL)
	}
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_phone", req.CustomerPhone)
	form.Set("cus_add1", req.AddressLine)
	form.Set("cus_city", req.City)
	form.Set("cus_country", "Bangladesh")
	form.Set("shipping_method", "Courier")
	form.Set("product_name", req.ProductName)
	form.Set("product_category", req.ProductCategory)
	form.Set("product_profile", "physical-goods")
	form.Set("num_of_item", fmt.Sprint(req.ItemCount))

	c.log(ctx, "request", "init_session", map[string]any{
		"tran_id": req.TransactionID,
		"amount":  req.Amount,
	})

	var session SessionResponse
	if err := c.postForm(ctx, sessionPath, form, &session); err != nil {
		c.log(ctx, "error", "init_session", map[string]any{"error": err.Error()})
		return nil, err
	}

	if !strings.EqualFold(session.Status, "SUCCESS") {
		reason := session.FailedReason
		if reason == "" {
			reason = "session rejected by gateway"
		}
		c.log(ctx, "error", "init_session", map[string]any{"error": reason})
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("sslcommerz session failed: %s", reason))
	}
	if session.GatewayPageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sslcommerz session missing gateway url")
	}

	c.log(ctx, "response", "init_session", map[string]any{
		"tran_id":     req.TransactionID,
		"session_key": session.SessionKey,
	})
	return &session, nil
}

// ValidateTransaction confirms a callback's val_id with the gateway before
// any money state changes. Callbacks are never trusted on their own.
func (c *Client) ValidateTransaction(ctx context.Context, valID string) (*ValidationResponse, error) {
	if strings.TrimSpace(valID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "val_id required")
	}

	query := url.Values{}
	query.Set("val_id", valID)
	query.Set("store_id", c.storeID)
	query.Set("store_passwd", c.storePassword)
	query.Set("format", "json")

	c.log(ctx, "request", "validate_transaction", map[string]any{"val_id": valID})

	endpoint := c.baseURL + validationPath + "?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building validation request")
	}

	var validation ValidationResponse
	if err := c.do(httpReq, "validate transaction", &validation); err != nil {
		c.log(ctx, "error", "validate_transaction", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "validate_transaction", map[string]any{
		"tran_id": validation.TransactionID,
		"status":  validation.Status,
	})
	return &validation, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building gateway request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(httpReq, "init session", out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapTransportError(err, op)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return pkgerrors.New(domainCodeForStatus(resp.StatusCode),
			fmt.Sprintf("sslcommerz %s failed with status %d", op, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("reading sslcommerz %s response", op))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decoding sslcommerz %s response", op))
	}
	return nil
}

func (c *Client) mapTransportError(err error, op string) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("sslcommerz %s timed out", op))
	case errors.As(err, &netErr) && netErr.Timeout():
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("sslcommerz %s timed out", op))
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("sslcommerz %s unreachable", op))
	}
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("sslcommerz %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("sslcommerz %s", phase))
	}
}
