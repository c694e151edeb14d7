package fakebackend

import (
	"github.com/jrsteele09/go-sales-client/api"
	"github.com/jrsteele09/go-sales-client/gateway"
)

func (b *Backend) initRoutes() {
	b.RegisterRouteFunc("POST "+gateway.RouteAuthLogin, b.LoginHandler())
	b.RegisterRouteFunc("GET "+gateway.RouteAuthMe, ChainMiddleware(b.MeHandler(), b.RequireAuth))

	b.RegisterRouteFunc("GET "+api.RouteSellers, ChainMiddleware(b.ListSellersHandler(), b.RequireAuth, b.RequireAdmin))
	b.RegisterRouteFunc("GET "+api.RouteSellers+"/{id}", ChainMiddleware(b.GetSellerHandler(), b.RequireAuth))
	b.RegisterRouteFunc("POST "+api.RouteSellersRegister, ChainMiddleware(b.RegisterSellerHandler(), b.RequireAuth, b.RequireAdmin))
	b.RegisterRouteFunc("PUT "+api.RouteSellers+"/{id}", ChainMiddleware(b.UpdateSellerHandler(), b.RequireAuth, b.RequireAdmin))
	b.RegisterRouteFunc("DELETE "+api.RouteSellers+"/{id}", ChainMiddleware(b.DeleteSellerHandler(), b.RequireAuth, b.RequireAdmin))

	b.RegisterRouteFunc("GET "+api.RouteProducts, ChainMiddleware(b.ListProductsHandler(), b.RequireAuth))
	b.RegisterRouteFunc("GET "+api.RouteProductsLowStock, ChainMiddleware(b.LowStockHandler(), b.RequireAuth))
	b.RegisterRouteFunc("GET "+api.RouteProducts+"/{id}", ChainMiddleware(b.GetProductHandler(), b.RequireAuth))
	b.RegisterRouteFunc("POST "+api.RouteProducts, ChainMiddleware(b.CreateProductHandler(), b.RequireAuth, b.RequireAdmin))
	b.RegisterRouteFunc("PUT "+api.RouteProducts+"/{id}", ChainMiddleware(b.UpdateProductHandler(), b.RequireAuth, b.RequireAdmin))
	b.RegisterRouteFunc("DELETE "+api.RouteProducts+"/{id}", ChainMiddleware(b.DeleteProductHandler(), b.RequireAuth, b.RequireAdmin))

	b.RegisterRouteFunc("GET "+api.RouteSales, ChainMiddleware(b.ListSalesHandler(), b.RequireAuth))
	b.RegisterRouteFunc("GET "+api.RouteSalesByPeriod, ChainMiddleware(b.SalesByPeriodHandler(), b.RequireAuth))
	b.RegisterRouteFunc("GET "+api.RouteSales+"/{id}", ChainMiddleware(b.GetSaleHandler(), b.RequireAuth))
	b.RegisterRouteFunc("GET "+api.RouteSalesBySeller+"/{id}", ChainMiddleware(b.SalesBySellerHandler(), b.RequireAuth))
	b.RegisterRouteFunc("POST "+api.RouteSalesRegister, ChainMiddleware(b.RecordSaleHandler(), b.RequireAuth))

	b.RegisterRouteFunc("GET "+api.RouteReportsRanking, ChainMiddleware(b.RankingHandler(), b.RequireAuth, b.RequireAdmin))
	b.RegisterRouteFunc("GET "+api.RouteReportsMetrics, ChainMiddleware(b.MetricsHandler(), b.RequireAuth))
	b.RegisterRouteFunc("GET "+api.RouteReportsExport+"/{format}", ChainMiddleware(b.ExportHandler(), b.RequireAuth, b.RequireAdmin))

	b.RegisterRouteFunc("GET "+api.RouteNotifications, ChainMiddleware(b.ListNotificationsHandler(), b.RequireAuth))
	b.RegisterRouteFunc("POST "+api.RouteNotificationsTest, ChainMiddleware(b.TestNotificationHandler(), b.RequireAuth, b.RequireAdmin))
	b.RegisterRouteFunc("PATCH "+api.RouteNotifications+"/{id}/leida", ChainMiddleware(b.MarkNotificationReadHandler(), b.RequireAuth))
}
