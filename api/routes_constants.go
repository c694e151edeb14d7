package api

import "fmt"

// Backend resource paths
const (
	RouteSellers         = "/vendedores"
	RouteSellersRegister = "/vendedores/registrar"

	RouteProducts         = "/productos"
	RouteProductsLowStock = "/productos/bajo-stock"

	RouteSales         = "/ventas"
	RouteSalesRegister = "/ventas/registrar"
	RouteSalesBySeller = "/ventas/vendedor"
	RouteSalesByPeriod = "/ventas/periodo"

	RouteReportsRanking = "/reportes/ranking"
	RouteReportsMetrics = "/reportes/metricas"
	RouteReportsExport  = "/reportes/exportar"

	RouteNotifications     = "/notificaciones"
	RouteNotificationsTest = "/notificaciones/test"
)

func withID(prefix string, id int) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
