package xpressbees

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	providerdomain "github.com/aerwok/rocketrybox/internal/provider/domain"
	quotedomain "github.com/aerwok/rocketrybox/internal/quote/domain"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	"go.uber.org/zap"
)

const providerName = "xpressbees"

// Adapter consumes the Xpressbees API and translates its payloads into the
// shared provider contract.
type Adapter struct {
	baseURL string
	token   string
	client  *http.Client
	engine  quotedomain.Engine
	log     *zap.Logger
}

func New(baseURL, token string, engine quotedomain.Engine, log *zap.Logger) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		engine:  engine,
		log:     log.Named("provider.xpressbees"),
	}
}

func (a *Adapter) Name() string { return providerName }

type serviceabilityResponse struct {
	Status bool `json:"status"`
	Data   []struct {
		Pincode string `json:"pincode"`
		COD     string `json:"cod"`
		Prepaid string `json:"prepaid"`
	} `json:"data"`
	Message string `json:"message"`
}

func (a *Adapter) CheckServiceability(ctx context.Context, pincode string) (*providerdomain.Serviceability, error) {
	endpoint := fmt.Sprintf("%s/api/courier/serviceability?pincode=%s", a.baseURL, url.QueryEscape(pincode))

	var resp serviceabilityResponse
	if err := a.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return &providerdomain.Serviceability{Serviceable: false, Details: resp.Message}, nil
	}
	for _, row := range resp.Data {
		if row.Pincode == pincode {
			return &providerdomain.Serviceability{Serviceable: true}, nil
		}
	}
	return &providerdomain.Serviceability{Serviceable: false, Details: "pincode not served"}, nil
}

// Quote checks destination serviceability with the provider and prices the
// shipment against this courier's tariff.
func (a *Adapter) Quote(ctx context.Context, params providerdomain.ShipmentParams) (*quotedomain.Quote, error) {
	service, err := a.CheckServiceability(ctx, params.DestinationPincode)
	if err != nil {
		return nil, err
	}
	if !service.Serviceable {
		return nil, providerdomain.ErrNotServiceable
	}

	return a.engine.Price(ctx, quotedomain.Request{
		Courier:        providerName,
		Zone:           params.Zone,
		Mode:           params.Mode,
		ActualWeightKg: params.ActualWeightKg,
		Dimensions:     params.Dimensions,
		IsCOD:          params.IsCOD,
		DeclaredValue:  params.DeclaredValue,
		RateBand:       params.RateBand,
	})
}

type createShipmentResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AWBNumber string `json:"awb_number"`
		LabelURL  string `json:"label"`
	} `json:"data"`
	Message string `json:"message"`
}

func (a *Adapter) BookShipment(ctx context.Context, req providerdomain.BookingRequest) (*providerdomain.Booking, error) {
	payload := map[string]any{
		"order_number":      req.OrderRef,
		"payment_type":      paymentType(req.IsCOD),
		"package_weight":    req.WeightKg,
		"shipping_mode":     shippingMode(req.Mode),
		"cod_charges":       req.CODAmount.String(),
		"pickup_pincode":    req.OriginPincode,
		"consignee_pincode": req.DestinationPincode,
		"consignee": map[string]any{
			"name":    req.ConsigneeName,
			"address": req.ConsigneeAddress,
			"phone":   req.ConsigneePhone,
		},
	}

	var resp createShipmentResponse
	if err := a.postJSON(ctx, a.baseURL+"/api/shipments2", payload, &resp); err != nil {
		a.log.Warn("booking failed, falling back to manual processing",
			zap.String("order_ref", req.OrderRef), zap.Error(err))
		return &providerdomain.Booking{
			ManualProcessing: true,
			Notes:            "xpressbees booking failed: " + err.Error(),
		}, nil
	}

	if !resp.Status || resp.Data.AWBNumber == "" {
		notes := resp.Message
		if notes == "" {
			notes = "rejected by provider"
		}
		a.log.Warn("booking rejected, falling back to manual processing",
			zap.String("order_ref", req.OrderRef), zap.String("message", notes))
		return &providerdomain.Booking{ManualProcessing: true, Notes: notes}, nil
	}

	return &providerdomain.Booking{
		AWB:         resp.Data.AWBNumber,
		TrackingURL: a.baseURL + "/track/" + resp.Data.AWBNumber,
	}, nil
}

type trackResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AWBNumber string `json:"awb_number"`
		Status    string `json:"status"`
		History   []struct {
			StatusName string `json:"status_name"`
			Location   string `json:"location"`
			EventTime  string `json:"event_time"`
		} `json:"history"`
	} `json:"data"`
}

func (a *Adapter) TrackShipment(ctx context.Context, awb string) (*providerdomain.Tracking, error) {
	endpoint := a.baseURL + "/api/shipments2/track/" + url.PathEscape(awb)

	var resp trackResponse
	if err := a.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if !resp.Status || resp.Data.AWBNumber == "" {
		return nil, providerdomain.ErrUnknownShipment
	}

	tracking := &providerdomain.Tracking{
		AWB:    resp.Data.AWBNumber,
		Status: resp.Data.Status,
	}
	for _, event := range resp.Data.History {
		at, err := time.Parse("2006-01-02 15:04:05", event.EventTime)
		if err != nil {
			at = time.Time{}
		}
		tracking.History = append(tracking.History, providerdomain.TrackingEvent{
			Status:   event.StatusName,
			Location: event.Location,
			At:       at,
		})
	}
	return tracking, nil
}

func (a *Adapter) CancelShipment(ctx context.Context, awb string) (*providerdomain.Cancellation, error) {
	payload := map[string]any{"awb": awb}

	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
	}
	if err := a.postJSON(ctx, a.baseURL+"/api/shipments2/cancel", payload, &resp); err != nil {
		return nil, err
	}
	return &providerdomain.Cancellation{Confirmed: resp.Status, Details: resp.Message}, nil
}

func paymentType(isCOD bool) string {
	if isCOD {
		return "cod"
	}
	return "prepaid"
}

func shippingMode(mode ratecarddomain.ShipMode) string {
	if mode == ratecarddomain.ModeAir {
		return "air"
	}
	return "surface"
}

func (a *Adapter) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return providerdomain.ErrProviderUnavailable
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	return a.do(req, out)
}

func (a *Adapter) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return providerdomain.ErrProviderUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return providerdomain.ErrProviderUnavailable
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *Adapter) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return providerdomain.ErrTimeout
		}
		return providerdomain.ErrProviderUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return providerdomain.ErrProviderUnavailable
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return providerdomain.ErrNotServiceable
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return providerdomain.ErrProviderUnavailable
	}
	return nil
}
