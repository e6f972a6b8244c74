// Package guests resolves opaque customer ids to display profiles through the
// identity provider. Lookups are best-effort: callers treat any error as a
// soft failure.
package guests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lodge/pkg/client"
	"lodge/pkg/locale"
	"lodge/pkg/logger"
	"lodge/pkg/model"
)

var (
	ErrNotFound    = errors.New("customer profile not found")
	ErrUnavailable = errors.New("identity provider unavailable")
)

type Resolver interface {
	Resolve(ctx context.Context, customerID string) (*model.GuestProfile, error)
}

type httpResolver struct {
	client *client.HttpClient
	log    *logger.Logger
}

// NewResolver returns an HTTP-backed resolver, or one that resolves nothing
// when no identity provider is configured.
func NewResolver(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) Resolver {
	if strings.TrimSpace(baseURL) == "" {
		return NoopResolver{}
	}
	return &httpResolver{
		client: client.NewHttpClient(strings.TrimRight(baseURL, "/"), timeout,
			client.WithBearerToken(apiKey),
			client.WithUserAgent("lodge-bookings"),
		),
		log: log,
	}
}

// profilePayload accepts both a bare profile and one wrapped in {data: ...}.
type profilePayload struct {
	model.GuestProfile
	Data *model.GuestProfile `json:"data"`
}

// Resolve makes exactly one attempt.
func (r *httpResolver) Resolve(ctx context.Context, customerID string) (*model.GuestProfile, error) {
	if customerID == "" {
		return nil, ErrNotFound
	}

	resp, err := r.client.GET(ctx, "/users/"+url.PathEscape(customerID), nil)
	if err != nil {
		r.log.Warn("Customer lookup failed", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 300:
		msg := client.GetErrorMessage(resp)
		r.log.Warn("Customer lookup rejected", "customer_id", customerID, "status", resp.StatusCode, "error", msg)
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}

	var payload profilePayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrUnavailable, err)
	}

	profile := payload.GuestProfile
	if payload.Data != nil {
		profile = *payload.Data
	}
	if profile.ID == "" {
		profile.ID = customerID
	}
	fillCountryFlag(&profile)
	return &profile, nil
}

// fillCountryFlag derives a flag from the nationality when the provider did
// not send one.
func fillCountryFlag(p *model.GuestProfile) {
	if p.CountryFlag != "" {
		return
	}
	if c, ok := locale.FindCountry(p.Nationality); ok {
		p.CountryFlag = locale.Flag(c.Code)
	}
}

type NoopResolver struct{}

func (NoopResolver) Resolve(context.Context, string) (*model.GuestProfile, error) {
	return nil, nil
}
