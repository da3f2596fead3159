package server

import (
	"net/http"
	"strconv"
	"strings"

	walletdomain "github.com/aerwok/rocketrybox/internal/wallet/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func sellerIDParam(c *gin.Context) (snowflake.ID, *apiError) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("seller_id")))
	if err != nil {
		return 0, newValidationError("seller_id", "invalid_seller_id", "invalid seller id")
	}
	return id, nil
}

// @Summary      Get Wallet Balance
// @Tags         wallet
// @Produce      json
// @Param        seller_id path string true "Seller ID"
// @Success      200  {object}  map[string]any
// @Router       /wallet/{seller_id}/balance [get]
func (s *Server) GetWalletBalance(c *gin.Context) {
	sellerID, apiErr := sellerIDParam(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	balance, err := s.walletSvc.GetBalance(c.Request.Context(), sellerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"seller_id": sellerID.String(),
		"balance":   balance,
	}})
}

// @Summary      List Wallet Transactions
// @Description  Return ledger entries for a seller, newest first
// @Tags         wallet
// @Produce      json
// @Param        seller_id path string true "Seller ID"
// @Param        limit query int false "Maximum rows, default 50"
// @Success      200  {array}  walletdomain.Transaction
// @Router       /wallet/{seller_id}/transactions [get]
func (s *Server) ListWalletTransactions(c *gin.Context) {
	sellerID, apiErr := sellerIDParam(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	transactions, err := s.walletSvc.ListTransactions(c.Request.Context(), sellerID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": transactions})
}

type rechargeBody struct {
	Amount decimal.Decimal `json:"amount"`
}

// @Summary      Recharge Wallet
// @Description  Credit funds into a seller's prepaid wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        seller_id path string true "Seller ID"
// @Param        request body rechargeBody true "Recharge Amount"
// @Success      200  {object}  walletdomain.Transaction
// @Router       /wallet/{seller_id}/recharge [post]
func (s *Server) RechargeWallet(c *gin.Context) {
	sellerID, apiErr := sellerIDParam(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	var body rechargeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tx, err := s.walletSvc.Credit(c.Request.Context(), walletdomain.CreditRequest{
		SellerID: sellerID,
		Amount:   body.Amount,
		Reason:   "wallet_recharge",
		Type:     walletdomain.TransactionRecharge,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sellerIDStr := sellerID.String()
	_ = s.auditSvc.Record(c.Request.Context(), "seller", &sellerIDStr, "wallet.recharge", "seller", &sellerIDStr, map[string]any{
		"amount":         body.Amount.String(),
		"transaction_id": tx.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": tx})
}
