// Package openpayments is the HTTP adapter for Open Payments auth and
// resource servers.
package openpayments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when the breaker for a host rejects the call.
var ErrCircuitOpen = errors.New("openpayments: circuit open")

const maxResponseBytes = 1 << 20

// Client implements ports.PaymentNetworkClient for one wallet's credentials.
type Client struct {
	walletAddress string
	signer        *Signer
	http          *http.Client
	breakers      *Breakers
	log           zerolog.Logger
}

// NewClient creates a client that identifies as walletAddress and signs
// with signer.
func NewClient(walletAddress string, signer *Signer, httpClient *http.Client, breakers *Breakers, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		walletAddress: walletAddress,
		signer:        signer,
		http:          httpClient,
		breakers:      breakers,
		log:           log,
	}
}

// WalletAddress returns the wallet this client acts for.
func (c *Client) WalletAddress() string {
	return c.walletAddress
}

// GetWalletAddress fetches the public wallet address document.
func (c *Client) GetWalletAddress(ctx context.Context, walletURL string) (*domain.WalletAddress, error) {
	var wa domain.WalletAddress
	if err := c.do(ctx, "wallet_address.get", http.MethodGet, walletURL, "", nil, &wa); err != nil {
		return nil, err
	}
	if wa.ID == "" {
		wa.ID = walletURL
	}
	return &wa, nil
}

// RequestGrant posts a GNAP grant request to the auth server.
func (c *Client) RequestGrant(ctx context.Context, authServerURL string, req ports.GrantRequest) (*domain.Grant, error) {
	if req.Client == "" {
		req.Client = c.walletAddress
	}
	var g domain.Grant
	if err := c.do(ctx, "grant.request", http.MethodPost, authServerURL, "", req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ContinueGrant posts to the continuation URI with the continuation token.
func (c *Client) ContinueGrant(ctx context.Context, continueURI, continueToken, interactRef string) (*domain.Grant, error) {
	var body any
	if interactRef != "" {
		body = map[string]string{"interact_ref": interactRef}
	}
	var g domain.Grant
	if err := c.do(ctx, "grant.continue", http.MethodPost, continueURI, continueToken, body, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateIncomingPayment creates an incoming payment on the receiver's
// resource server.
func (c *Client) CreateIncomingPayment(ctx context.Context, resourceServerURL, accessToken string, req ports.IncomingPaymentRequest) (*domain.RemotePayment, error) {
	var p domain.RemotePayment
	if err := c.do(ctx, "incoming_payment.create", http.MethodPost, endpoint(resourceServerURL, "incoming-payments"), accessToken, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListIncomingPayments returns one page of incoming payments.
func (c *Client) ListIncomingPayments(ctx context.Context, resourceServerURL, accessToken string, q ports.ListQuery) (*domain.PaymentPage, error) {
	return c.list(ctx, "incoming_payment.list", endpoint(resourceServerURL, "incoming-payments"), accessToken, q)
}

// CreateQuote prices a payment from the sender wallet to a receiver.
func (c *Client) CreateQuote(ctx context.Context, resourceServerURL, accessToken string, req ports.QuoteRequest) (*domain.Quote, error) {
	var q domain.Quote
	if err := c.do(ctx, "quote.create", http.MethodPost, endpoint(resourceServerURL, "quotes"), accessToken, req, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateOutgoingPayment executes a quote.
func (c *Client) CreateOutgoingPayment(ctx context.Context, resourceServerURL, accessToken string, req ports.OutgoingPaymentRequest) (*domain.RemotePayment, error) {
	var p domain.RemotePayment
	if err := c.do(ctx, "outgoing_payment.create", http.MethodPost, endpoint(resourceServerURL, "outgoing-payments"), accessToken, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListOutgoingPayments returns one page of outgoing payments.
func (c *Client) ListOutgoingPayments(ctx context.Context, resourceServerURL, accessToken string, q ports.ListQuery) (*domain.PaymentPage, error) {
	return c.list(ctx, "outgoing_payment.list", endpoint(resourceServerURL, "outgoing-payments"), accessToken, q)
}

func (c *Client) list(ctx context.Context, op, base, accessToken string, q ports.ListQuery) (*domain.PaymentPage, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%s: parse url: %w", op, err)
	}
	query := u.Query()
	if q.WalletAddress != "" {
		query.Set("wallet-address", q.WalletAddress)
	}
	if q.First > 0 {
		query.Set("first", strconv.Itoa(q.First))
	}
	if q.Cursor != "" {
		query.Set("cursor", q.Cursor)
	}
	u.RawQuery = query.Encode()

	var page domain.PaymentPage
	if err := c.do(ctx, op, http.MethodGet, u.String(), accessToken, nil, &page); err != nil {
		return nil, err
	}
	if page.Result == nil {
		page.Result = []domain.RemotePayment{}
	}
	return &page, nil
}

// do sends one request through the host's breaker. Non-2xx answers become
// *ports.RemoteError carrying the body.
func (c *Client) do(ctx context.Context, op, method, rawURL, accessToken string, in, out any) error {
	start := time.Now()
	err := c.send(ctx, op, method, rawURL, accessToken, in, out)

	outcome := "ok"
	var remote *ports.RemoteError
	switch {
	case err == nil:
	case errors.As(err, &remote):
		outcome = strconv.Itoa(remote.StatusCode)
	case errors.Is(err, ErrCircuitOpen):
		outcome = "circuit_open"
	default:
		outcome = "network"
	}
	metrics.RemoteRequestsTotal.WithLabelValues(op, outcome).Inc()
	metrics.RemoteRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		c.log.Debug().Err(err).Str("op", op).Str("url", rawURL).Dur("duration", time.Since(start)).Msg("open payments call failed")
	}
	return err
}

func (c *Client) send(ctx context.Context, op, method, rawURL, accessToken string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "GNAP "+accessToken)
	}
	if c.signer != nil && (accessToken != "" || len(body) > 0) {
		if err := c.signer.Sign(req, body); err != nil {
			return fmt.Errorf("%s: sign request: %w", op, err)
		}
	}

	result, err := c.breakers.For(req.URL.Host).Execute(func() (any, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &ports.RemoteError{Op: op, StatusCode: resp.StatusCode, Body: payload}
		}
		return payload, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s: %w", op, ErrCircuitOpen)
		}
		var remote *ports.RemoteError
		if errors.As(err, &remote) {
			return remote
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	payload, _ := result.([]byte)
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func endpoint(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + path
}
