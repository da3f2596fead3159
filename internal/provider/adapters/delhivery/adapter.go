package delhivery

import (
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

const providerName = "delhivery"

// Adapter consumes the Delhivery API and translates its payloads into the
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
		log:     log.Named("provider.delhivery"),
	}
}

func (a *Adapter) Name() string { return providerName }

type pincodeResponse struct {
	DeliveryCodes []struct {
		PostalCode struct {
			Pin     json.Number `json:"pin"`
			Remarks string      `json:"remarks"`
			PrePaid string      `json:"pre_paid"`
			COD     string      `json:"cod"`
		} `json:"postal_code"`
	} `json:"delivery_codes"`
}

func (a *Adapter) CheckServiceability(ctx context.Context, pincode string) (*providerdomain.Serviceability, error) {
	endpoint := fmt.Sprintf("%s/c/api/pin-codes/json/?filter_codes=%s", a.baseURL, url.QueryEscape(pincode))

	var resp pincodeResponse
	if err := a.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	for _, code := range resp.DeliveryCodes {
		if code.PostalCode.Pin.String() == pincode {
			if strings.EqualFold(code.PostalCode.Remarks, "embargo") {
				return &providerdomain.Serviceability{Serviceable: false, Details: "pincode under embargo"}, nil
			}
			return &providerdomain.Serviceability{Serviceable: true}, nil
		}
	}
	return &providerdomain.Serviceability{Serviceable: false, Details: "pincode not in delivery network"}, nil
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
	Packages []struct {
		Waybill string `json:"waybill"`
		Status  string `json:"status"`
		Remarks string `json:"remarks"`
	} `json:"packages"`
	Success bool `json:"success"`
}

func (a *Adapter) BookShipment(ctx context.Context, req providerdomain.BookingRequest) (*providerdomain.Booking, error) {
	paymentMode := "Pre-paid"
	if req.IsCOD {
		paymentMode = "COD"
	}
	payload := map[string]any{
		"shipments": []map[string]any{{
			"order":         req.OrderRef,
			"origin_pin":    req.OriginPincode,
			"pin":           req.DestinationPincode,
			"weight":        req.WeightKg,
			"payment_mode":  paymentMode,
			"cod_amount":    req.CODAmount.String(),
			"name":          req.ConsigneeName,
			"add":           req.ConsigneeAddress,
			"phone":         req.ConsigneePhone,
			"shipping_mode": shippingMode(req.Mode),
		}},
	}

	var resp createShipmentResponse
	if err := a.postJSON(ctx, a.baseURL+"/api/cmu/create.json", payload, &resp); err != nil {
		a.log.Warn("booking failed, falling back to manual processing",
			zap.String("order_ref", req.OrderRef), zap.Error(err))
		return &providerdomain.Booking{
			ManualProcessing: true,
			Notes:            "delhivery booking failed: " + err.Error(),
		}, nil
	}

	if !resp.Success || len(resp.Packages) == 0 || resp.Packages[0].Waybill == "" {
		remarks := "rejected by provider"
		if len(resp.Packages) > 0 && resp.Packages[0].Remarks != "" {
			remarks = resp.Packages[0].Remarks
		}
		a.log.Warn("booking rejected, falling back to manual processing",
			zap.String("order_ref", req.OrderRef), zap.String("remarks", remarks))
		return &providerdomain.Booking{ManualProcessing: true, Notes: remarks}, nil
	}

	awb := resp.Packages[0].Waybill
	return &providerdomain.Booking{
		AWB:         awb,
		TrackingURL: a.baseURL + "/track/package/" + awb,
	}, nil
}

func shippingMode(mode ratecarddomain.ShipMode) string {
	if mode == ratecarddomain.ModeAir {
		return "Express"
	}
	return "Surface"
}

type trackResponse struct {
	ShipmentData []struct {
		Shipment struct {
			AWB    string `json:"AWB"`
			Status struct {
				Status string `json:"Status"`
			} `json:"Status"`
			Scans []struct {
				ScanDetail struct {
					Scan            string    `json:"Scan"`
					ScannedLocation string    `json:"ScannedLocation"`
					ScanDateTime    time.Time `json:"ScanDateTime"`
				} `json:"ScanDetail"`
			} `json:"Scans"`
		} `json:"Shipment"`
	} `json:"ShipmentData"`
}

func (a *Adapter) TrackShipment(ctx context.Context, awb string) (*providerdomain.Tracking, error) {
	endpoint := fmt.Sprintf("%s/api/v1/packages/json/?waybill=%s", a.baseURL, url.QueryEscape(awb))

	var resp trackResponse
	if err := a.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if len(resp.ShipmentData) == 0 {
		return nil, providerdomain.ErrUnknownShipment
	}

	shipment := resp.ShipmentData[0].Shipment
	tracking := &providerdomain.Tracking{
		AWB:    shipment.AWB,
		Status: shipment.Status.Status,
	}
	for _, scan := range shipment.Scans {
		tracking.History = append(tracking.History, providerdomain.TrackingEvent{
			Status:   scan.ScanDetail.Scan,
			Location: scan.ScanDetail.ScannedLocation,
			At:       scan.ScanDetail.ScanDateTime,
		})
	}
	return tracking, nil
}

func (a *Adapter) CancelShipment(ctx context.Context, awb string) (*providerdomain.Cancellation, error) {
	payload := map[string]any{"waybill": awb, "cancellation": true}

	var resp struct {
		Status bool   `json:"status"`
		Remark string `json:"remark"`
	}
	if err := a.postJSON(ctx, a.baseURL+"/api/p/edit", payload, &resp); err != nil {
		return nil, err
	}
	return &providerdomain.Cancellation{Confirmed: resp.Status, Details: resp.Remark}, nil
}

func (a *Adapter) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return providerdomain.ErrProviderUnavailable
	}
	req.Header.Set("Authorization", "Token "+a.token)
	return a.do(req, out)
}

func (a *Adapter) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return providerdomain.ErrProviderUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return providerdomain.ErrProviderUnavailable
	}
	req.Header.Set("Authorization", "Token "+a.token)
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
