// Package remote is the HTTP client for the authoritative manifest server.
// The server owns every record; this client issues mutations, maps the
// server's field-keyed validation errors onto local fields and hands back
// reconciled payloads for the session snapshot.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Amnesthesia/dz-app/internal/app"
	"github.com/Amnesthesia/dz-app/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Client talks JSON over HTTP to the dropzone server. It implements the
// app-layer SlotWriter, LoadWriter and ProfileSource interfaces.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger for request-level diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client for the given server base URL and bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dropzone fetches the operational context snapshot, including the current
// user's profile and role.
func (c *Client) Dropzone(ctx context.Context, dropzoneID string) (domain.Dropzone, domain.DropzoneUser, error) {
	var payload dropzonePayload
	if err := c.get(ctx, "/dropzones/"+url.PathEscape(dropzoneID), &payload); err != nil {
		return domain.Dropzone{}, domain.DropzoneUser{}, err
	}
	dz := payload.toDomain()
	var user domain.DropzoneUser
	if payload.CurrentUser != nil {
		user = payload.CurrentUser.toDomain()
	}
	return dz, user, nil
}

// Loads fetches the dropzone's loads from the given timestamp onward.
func (c *Client) Loads(ctx context.Context, dropzoneID string, earliest time.Time) ([]domain.Load, error) {
	path := fmt.Sprintf("/dropzones/%s/loads?earliest_timestamp=%s",
		url.PathEscape(dropzoneID), strconv.FormatInt(earliest.Unix(), 10))
	var payload loadListPayload
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	loads := make([]domain.Load, len(payload.Loads))
	for i, lp := range payload.Loads {
		loads[i] = lp.toDomain()
	}
	return loads, nil
}

// LoadByID fetches one load with its slots.
func (c *Client) LoadByID(ctx context.Context, loadID string) (domain.Load, error) {
	var payload loadPayload
	if err := c.get(ctx, "/loads/"+url.PathEscape(loadID), &payload); err != nil {
		return domain.Load{}, err
	}
	return payload.toDomain(), nil
}

// DropzoneUser fetches a fresh participant snapshot for eligibility checks.
func (c *Client) DropzoneUser(ctx context.Context, dropzoneID, dropzoneUserID string) (domain.DropzoneUser, error) {
	path := "/dropzones/" + url.PathEscape(dropzoneID) + "/users/" + url.PathEscape(dropzoneUserID)
	var payload userPayload
	if err := c.get(ctx, path, &payload); err != nil {
		return domain.DropzoneUser{}, err
	}
	return payload.toDomain(), nil
}

// CreateSlots manifests one or more participants as a single batch. The
// server either creates every slot or none.
func (c *Client) CreateSlots(ctx context.Context, in app.CreateSlotsRequest) (app.ManifestResult, error) {
	body := createSlotsBody{
		JumpTypeID:   in.Config.JumpTypeID,
		TicketTypeID: in.Config.TicketTypeID,
		ExtraIDs:     in.Config.ExtraIDs,
	}
	for _, m := range in.Members {
		body.UserGroup = append(body.UserGroup, slotUserBody{
			UserID:              m.UserID,
			PassengerName:       m.PassengerName,
			PassengerExitWeight: m.PassengerExitWeight,
		})
	}

	env, err := c.mutate(ctx, http.MethodPost, "/loads/"+url.PathEscape(in.LoadID)+"/slots", body, in.IdempotencyKey)
	if err != nil {
		return app.ManifestResult{}, err
	}
	if env.Load == nil {
		return app.ManifestResult{}, domain.ErrLoadNotFound
	}
	return app.ManifestResult{
		Load:        env.Load.toDomain(),
		GroupNumber: env.GroupNumber,
		SlotIDs:     env.CreatedSlotIDs,
	}, nil
}

// UpdateSlot changes a slot's activity configuration.
func (c *Client) UpdateSlot(ctx context.Context, in app.UpdateSlotRequest) (domain.Load, error) {
	body := updateSlotBody{
		JumpTypeID:   in.Config.JumpTypeID,
		TicketTypeID: in.Config.TicketTypeID,
		ExtraIDs:     in.Config.ExtraIDs,
	}
	env, err := c.mutate(ctx, http.MethodPatch, "/slots/"+url.PathEscape(in.SlotID), body, in.IdempotencyKey)
	if err != nil {
		return domain.Load{}, err
	}
	if env.Load == nil {
		return domain.Load{}, domain.ErrLoadNotFound
	}
	return env.Load.toDomain(), nil
}

// DeleteSlot removes a slot and returns the reconciled load.
func (c *Client) DeleteSlot(ctx context.Context, slotID, idempotencyKey string) (domain.Load, error) {
	env, err := c.mutate(ctx, http.MethodDelete, "/slots/"+url.PathEscape(slotID), nil, idempotencyKey)
	if err != nil {
		return domain.Load{}, err
	}
	if env.Load == nil {
		return domain.Load{}, domain.ErrLoadNotFound
	}
	return env.Load.toDomain(), nil
}

// CreateLoad creates a load.
func (c *Client) CreateLoad(ctx context.Context, in app.CreateLoadRequest) (domain.Load, error) {
	body := createLoadBody{
		DropzoneID: in.DropzoneID,
		Name:       in.Name,
		PlaneID:    in.PlaneID,
		MaxSlots:   in.MaxSlots,
		IsOpen:     in.IsOpen,
	}
	env, err := c.mutate(ctx, http.MethodPost, "/loads", body, in.IdempotencyKey)
	if err != nil {
		return domain.Load{}, err
	}
	if env.Load == nil {
		return domain.Load{}, domain.ErrLoadNotFound
	}
	return env.Load.toDomain(), nil
}

// UpdateLoad applies a partial load update.
func (c *Client) UpdateLoad(ctx context.Context, in app.UpdateLoadRequest) (domain.Load, error) {
	body := updateLoadBody{
		PilotID:       in.PilotID,
		GCAID:         in.GCAID,
		LoadMasterID:  in.LoadMasterID,
		PlaneID:       in.PlaneID,
		DispatchAt:    in.DispatchAt,
		ClearDispatch: in.ClearDispatch,
		HasLanded:     in.HasLanded,
	}
	env, err := c.mutate(ctx, http.MethodPatch, "/loads/"+url.PathEscape(in.LoadID), body, in.IdempotencyKey)
	if err != nil {
		return domain.Load{}, err
	}
	if env.Load == nil {
		return domain.Load{}, domain.ErrLoadNotFound
	}
	return env.Load.toDomain(), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp.StatusCode, raw, path)
	}
	return json.Unmarshal(raw, out)
}

// mutate issues a mutating request and decodes the response envelope.
// Collaborator-reported errors take precedence over the local snapshot.
func (c *Client) mutate(ctx context.Context, method, path string, body any, idempotencyKey string) (envelope, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return envelope{}, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return envelope{}, err
	}
	c.setHeaders(req, idempotencyKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return envelope{}, domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, domain.TransportError{Err: err}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request")

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return envelope{}, c.statusError(resp.StatusCode, raw, path)
		}
	}

	if err := errorFromEnvelope(resp.StatusCode, env); err != nil {
		return envelope{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return envelope{}, c.statusError(resp.StatusCode, raw, path)
	}
	return env, nil
}

func (c *Client) setHeaders(req *http.Request, idempotencyKey string) {
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}
}

func (c *Client) statusError(status int, raw []byte, path string) error {
	switch status {
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		switch {
		case strings.HasPrefix(path, "/slots/"):
			return domain.ErrSlotNotFound
		case strings.Contains(path, "/users/"):
			return domain.ErrUserNotFound
		}
		return domain.ErrLoadNotFound
	}
	msg := http.StatusText(status)
	if len(raw) > 0 {
		msg = string(raw)
	}
	c.log.Warn().Int("status", status).Str("path", path).Msg("unexpected response")
	return ServerError{Status: status, Messages: []string{msg}}
}
