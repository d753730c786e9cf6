package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bizledger/pkg/tenantctx"
)

const (
	HeaderTenant = "X-Tenant-ID"
	HeaderBranch = "X-Branch-ID"

	// allBranches is the sentinel branch header value for owners
	// viewing every branch at once.
	allBranches = "all"
)

// TenantContext resolves the tenant and branch scope from request
// headers into the request context. Every ledger call downstream is
// tenant-scoped through the context, never through ambient state.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderTenant))
		tenantID, err := snowflake.ParseString(raw)
		if err != nil || tenantID == 0 {
			AbortWithError(c, newValidationError("tenant", "invalid_tenant", "missing or invalid tenant header"))
			return
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), tenantID)

		if rawBranch := strings.TrimSpace(c.GetHeader(HeaderBranch)); rawBranch != "" && !strings.EqualFold(rawBranch, allBranches) {
			branchID, err := snowflake.ParseString(rawBranch)
			if err != nil || branchID == 0 {
				AbortWithError(c, newValidationError("branch", "invalid_branch", "invalid branch header"))
				return
			}
			ctx = tenantctx.WithBranchID(ctx, branchID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
