package router

import (
	"github.com/gin-gonic/gin"

	"github.com/tradelog/backend/internal/interfaces/http/handler"
)

// LandedCostRoutes builds the /landed-cost group. idempotency wraps the two
// routes that move money so a retried request is answered from the store.
func LandedCostRoutes(vouchers *handler.VoucherHandler, settlements *handler.SettlementHandler, idempotency gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("landed-cost", "/landed-cost")

	g.POST("/allocation/preview", vouchers.PreviewAllocation)

	g.POST("/vouchers", vouchers.Create)
	g.GET("/vouchers", vouchers.List)
	g.GET("/vouchers/:id", vouchers.GetByID)
	g.PUT("/vouchers/:id", vouchers.Update)
	g.DELETE("/vouchers/:id", vouchers.Delete)
	g.POST("/vouchers/:id/payables/:category/pay", idempotency, vouchers.PayCategory)

	g.GET("/settlements/pending-dues", settlements.PendingDues)
	g.POST("/settlements", settlements.Create)
	g.GET("/settlements", settlements.List)
	g.GET("/settlements/:id", settlements.GetByID)
	g.POST("/settlements/:id/finalize", idempotency, settlements.Finalize)

	return g
}

// SystemRoutes builds the /system group
func SystemRoutes(system *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", system.GetSystemInfo)
	g.GET("/ping", system.Ping)
	return g
}
