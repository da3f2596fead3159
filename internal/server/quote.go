package server

import (
	"net/http"
	"strings"

	orderdomain "github.com/aerwok/rocketrybox/internal/order/domain"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	"github.com/aerwok/rocketrybox/internal/weight"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type dimensionsBody struct {
	LengthCm float64 `json:"length_cm"`
	WidthCm  float64 `json:"width_cm"`
	HeightCm float64 `json:"height_cm"`
}

type shipmentBody struct {
	SellerID           string          `json:"seller_id"`
	OriginPincode      string          `json:"origin_pincode"`
	DestinationPincode string          `json:"destination_pincode"`
	Mode               string          `json:"mode"`
	ActualWeightKg     float64         `json:"actual_weight_kg"`
	Dimensions         *dimensionsBody `json:"dimensions,omitempty"`
	IsCOD              bool            `json:"is_cod"`
	DeclaredValue      decimal.Decimal `json:"declared_value"`
}

func (b shipmentBody) toRequest() (orderdomain.ShipmentRequest, *apiError) {
	sellerID, err := snowflake.ParseString(strings.TrimSpace(b.SellerID))
	if err != nil {
		return orderdomain.ShipmentRequest{}, newValidationError("seller_id", "invalid_seller_id", "invalid seller id")
	}
	if b.ActualWeightKg <= 0 {
		return orderdomain.ShipmentRequest{}, newValidationError("actual_weight_kg", "invalid_weight", "actual weight must be positive")
	}

	mode := ratecarddomain.ShipMode(strings.ToLower(strings.TrimSpace(b.Mode)))
	if !mode.Valid() {
		return orderdomain.ShipmentRequest{}, newValidationError("mode", "invalid_mode", "mode must be surface or air")
	}

	var dims *weight.Dimensions
	if b.Dimensions != nil {
		dims = &weight.Dimensions{
			LengthCm: b.Dimensions.LengthCm,
			WidthCm:  b.Dimensions.WidthCm,
			HeightCm: b.Dimensions.HeightCm,
		}
	}

	return orderdomain.ShipmentRequest{
		SellerID:           sellerID,
		OriginPincode:      strings.TrimSpace(b.OriginPincode),
		DestinationPincode: strings.TrimSpace(b.DestinationPincode),
		Mode:               mode,
		ActualWeightKg:     b.ActualWeightKg,
		Dimensions:         dims,
		IsCOD:              b.IsCOD,
		DeclaredValue:      b.DeclaredValue,
	}, nil
}

// @Summary      Compare Courier Rates
// @Description  Fan out to all active couriers and return serviceable quotes, cheapest first
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        request body shipmentBody true "Shipment Parameters"
// @Success      200  {object}  rateshopdomain.Comparison
// @Router       /quotes [post]
func (s *Server) QuoteShipment(c *gin.Context) {
	var body shipmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req, apiErr := body.toRequest()
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	comparison, err := s.orderSvc.QuoteShipment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comparison})
}
