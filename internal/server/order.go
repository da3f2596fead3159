package server

import (
	"net/http"
	"strings"

	orderdomain "github.com/aerwok/rocketrybox/internal/order/domain"
	"github.com/gin-gonic/gin"
)

type createOrderBody struct {
	shipmentBody

	ConsigneeName    string `json:"consignee_name"`
	ConsigneeAddress string `json:"consignee_address"`
	ConsigneePhone   string `json:"consignee_phone"`
}

// @Summary      Create Order
// @Description  Book the cheapest serviceable courier, debiting the seller wallet atomically
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body createOrderBody true "Order Request"
// @Success      201  {object}  orderdomain.BindingResult
// @Router       /orders [post]
func (s *Server) CreateOrder(c *gin.Context) {
	var body createOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shipment, apiErr := body.shipmentBody.toRequest()
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}
	if strings.TrimSpace(body.ConsigneeName) == "" {
		AbortWithError(c, newValidationError("consignee_name", "missing_consignee_name", "consignee name is required"))
		return
	}

	result, err := s.orderSvc.CreateOrder(c.Request.Context(), orderdomain.CreateOrderRequest{
		ShipmentRequest:  shipment,
		ConsigneeName:    strings.TrimSpace(body.ConsigneeName),
		ConsigneeAddress: strings.TrimSpace(body.ConsigneeAddress),
		ConsigneePhone:   strings.TrimSpace(body.ConsigneePhone),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// @Summary      Get Order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200  {object}  orderdomain.Order
// @Router       /orders/{id} [get]
func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.orderSvc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

// @Summary      Track Order
// @Description  Proxy the live tracking feed from the courier that holds the shipment
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200  {object}  providerdomain.Tracking
// @Router       /orders/{id}/track [get]
func (s *Server) TrackOrder(c *gin.Context) {
	tracking, err := s.orderSvc.TrackOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tracking})
}

// @Summary      Cancel Order
// @Description  Cancel with the courier and refund the shipping charge to the wallet
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200  {object}  orderdomain.Order
// @Router       /orders/{id}/cancel [post]
func (s *Server) CancelOrder(c *gin.Context) {
	order, err := s.orderSvc.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
