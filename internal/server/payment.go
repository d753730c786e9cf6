package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/bizledger/internal/payment/domain"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
)

func (s *Server) ApplyPayment(c *gin.Context) {
	var req paymentdomain.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}
	req.InvoiceID = strings.TrimSpace(c.Param("id"))

	item, err := s.paymentSvc.Apply(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ReversePayment(c *gin.Context) {
	if err := s.paymentSvc.Reverse(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListInvoicePayments(c *gin.Context) {
	payments, err := s.paymentSvc.ListByInvoice(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payments})
}

func (s *Server) ListPayments(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid pagination"))
		return
	}

	req := paymentdomain.ListPaymentRequest{Pagination: page}
	req.InvoiceID = optionalString(c.Query("invoice_id"))
	if raw := strings.TrimSpace(c.Query("method")); raw != "" {
		method := paymentdomain.Method(raw)
		if !paymentdomain.ValidMethod(method) {
			AbortWithError(c, newValidationError("method", "invalid_method", "invalid payment method"))
			return
		}
		req.Method = &method
	}

	startDate, err := parseOptionalTime(c.Query("start_date"), false)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_time", "invalid start date"))
		return
	}
	req.StartDate = startDate

	endDate, err := parseOptionalTime(c.Query("end_date"), true)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_time", "invalid end date"))
		return
	}
	req.EndDate = endDate

	resp, err := s.paymentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Payments, "page_info": resp.PageInfo})
}
