package server

import (
	"net/http"

	auditdomain "github.com/aerwok/rocketrybox/internal/audit/domain"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Create Rate Card
// @Description  Register a new tariff for a courier/zone/mode/band tuple
// @Tags         rate-cards
// @Accept       json
// @Produce      json
// @Param        request body ratecarddomain.CreateRequest true "Rate Card"
// @Success      201  {object}  ratecarddomain.RateCard
// @Router       /admin/rate-cards [post]
func (s *Server) CreateRateCard(c *gin.Context) {
	var req ratecarddomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	card, err := s.ratecardSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cardID := card.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.ActorTypeAdmin, nil, "rate_card.create", "rate_card", &cardID, map[string]any{
		"courier": card.Courier,
		"zone":    string(card.Zone),
		"mode":    string(card.Mode),
		"band":    card.RateBand,
	})

	c.JSON(http.StatusCreated, gin.H{"data": card})
}

// @Summary      List Rate Cards
// @Tags         rate-cards
// @Produce      json
// @Param        courier query string false "Filter by courier"
// @Success      200  {array}  ratecarddomain.RateCard
// @Router       /admin/rate-cards [get]
func (s *Server) ListRateCards(c *gin.Context) {
	cards, err := s.ratecardSvc.List(c.Request.Context(), c.Query("courier"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cards})
}

// @Summary      Update Rate Card
// @Description  Replace the pricing fields of an existing tariff
// @Tags         rate-cards
// @Accept       json
// @Produce      json
// @Param        id path string true "Rate Card ID"
// @Param        request body ratecarddomain.UpdateRequest true "Pricing Fields"
// @Success      200  {object}  ratecarddomain.RateCard
// @Router       /admin/rate-cards/{id} [put]
func (s *Server) UpdateRateCard(c *gin.Context) {
	var req ratecarddomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	card, err := s.ratecardSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cardID := card.ID.String()
	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.ActorTypeAdmin, nil, "rate_card.update", "rate_card", &cardID, map[string]any{
		"base_rate":       card.BaseRate.String(),
		"additional_rate": card.AdditionalRate.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": card})
}

// @Summary      Deactivate Rate Card
// @Description  Retire a tariff; historical orders keep their priced amounts
// @Tags         rate-cards
// @Produce      json
// @Param        id path string true "Rate Card ID"
// @Success      200  {object}  map[string]any
// @Router       /admin/rate-cards/{id}/deactivate [post]
func (s *Server) DeactivateRateCard(c *gin.Context) {
	id := c.Param("id")
	if err := s.ratecardSvc.Deactivate(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.ActorTypeAdmin, nil, "rate_card.deactivate", "rate_card", &id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "active": false}})
}
