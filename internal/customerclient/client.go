// Package customerclient is the vehicle service's HTTP client for the customer service.
package customerclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fleetlink/fleetlink/internal/discovery"
	"github.com/fleetlink/fleetlink/internal/handler/dto"
	"github.com/fleetlink/fleetlink/internal/metrics"
	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/requestid"
)

const (
	// DefaultConnectTimeout bounds TCP connection setup.
	DefaultConnectTimeout = 5 * time.Second
	// DefaultReadTimeout bounds the wait for response headers.
	DefaultReadTimeout = 5 * time.Second

	// maxBodySize caps how much of a response is decoded.
	maxBodySize = 8 << 20

	opGet  = "get"
	opList = "list"
)

// Client errors.
var (
	// ErrCustomerNotFound means the customer service answered and has no such customer.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrUnavailable means the customer service could not be reached or timed out.
	ErrUnavailable = errors.New("customer service unavailable")
	// ErrBadResponse means the customer service answered with an unusable response.
	ErrBadResponse = errors.New("bad response from customer service")
)

// Options configures a Client.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Recorder       metrics.Recorder
}

// Client fetches customers from the customer service.
type Client struct {
	httpClient *http.Client
	resolver   discovery.Resolver
	metrics    metrics.Recorder
}

// New creates a Client that resolves the customer service through resolver.
func New(resolver discovery.Resolver, opts Options) *Client {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NewNoop()
	}

	return &Client{
		httpClient: newHTTPClient(opts.ConnectTimeout, opts.ReadTimeout),
		resolver:   resolver,
		metrics:    opts.Recorder,
	}
}

// newHTTPClient builds an HTTP client whose total request time is bounded
// by connect + read timeouts.
func newHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: connectTimeout + readTimeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: readTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// GetCustomer fetches one customer. It returns ErrCustomerNotFound when the
// customer service reports that the customer does not exist.
func (c *Client) GetCustomer(ctx context.Context, id model.CustomerID) (*model.Customer, error) {
	start := time.Now()

	var customer model.Customer
	err := c.do(ctx, "/customers/"+id.String(), &customer)
	c.observe(opGet, start, err)
	if err != nil {
		return nil, err
	}

	return &customer, nil
}

// ListCustomers fetches the full customer collection in one call.
func (c *Client) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	start := time.Now()

	var customers []model.Customer
	err := c.do(ctx, "/customers", &customers)
	if errors.Is(err, ErrCustomerNotFound) {
		// A 404 on the collection is not a "no match" signal.
		err = fmt.Errorf("%w: collection returned 404", ErrBadResponse)
	}
	c.observe(opList, start, err)
	if err != nil {
		return nil, err
	}

	if customers == nil {
		customers = []model.Customer{}
	}
	return customers, nil
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	baseURL, err := c.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrBadResponse, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fleetlink-vehicle-service/1.0")
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return notFound(resp.Body)
	case resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		// A body cut short by the client timeout is an availability problem.
		if ctx.Err() != nil || isTimeout(err) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return fmt.Errorf("%w: decode: %w", ErrBadResponse, err)
	}

	return nil
}

// notFound classifies a 404. Only the customer service's own not-found code
// means the customer is absent; a 404 from an unknown route, a proxy or a
// misregistered instance is an unusable response.
func notFound(body io.Reader) error {
	var errResp dto.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(&errResp); err != nil {
		return fmt.Errorf("%w: status 404 with undecodable body", ErrBadResponse)
	}
	if errResp.Code != dto.CodeCustomerNotFound {
		return fmt.Errorf("%w: status 404 (%q)", ErrBadResponse, errResp.Code)
	}
	return ErrCustomerNotFound
}

func (c *Client) observe(op string, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeUnavailable
	}
	c.metrics.ObserveUpstreamCall(op, outcome, time.Since(start))
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
