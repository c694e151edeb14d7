package api_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-sales-client/api"
	"github.com/jrsteele09/go-sales-client/gateway"
	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/jrsteele09/go-sales-client/internal/fakebackend"
	"github.com/jrsteele09/go-sales-client/internal/utils"
	"github.com/jrsteele09/go-sales-client/token"
	tokenfakerepo "github.com/jrsteele09/go-sales-client/token/repofake"
	"github.com/jrsteele09/go-sales-client/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, email string) (*api.API, *fakebackend.Backend) {
	t.Helper()
	backend := fakebackend.Serve(t, fakebackend.WithLogger(zerolog.Nop()))
	store := token.NewKVStore(tokenfakerepo.NewFakeKV())
	if email != "" {
		tok, err := backend.IssueToken(email, time.Hour)
		require.NoError(t, err)
		user, _ := backend.User(email)
		require.NoError(t, store.Write(token.StoredCredential{Token: tok, User: user}))
	}
	client := gateway.NewClient(store, gateway.WithBaseURL(backend.URL), gateway.WithLogger(zerolog.Nop()))
	return api.New(client), backend
}

func TestProducts(t *testing.T) {
	a, _ := newAPI(t, fakebackend.AdminEmail)
	ctx := context.Background()

	products, err := a.Products.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)

	created, err := a.Products.Create(ctx, api.ProductCreate{
		Code: "P-100", Name: "Auriculares", SalePrice: 30, PurchasePrice: 18, Stock: 1, MinStock: 2,
	})
	require.NoError(t, err)
	require.True(t, created.Active)
	require.True(t, created.LowStock())
	require.InDelta(t, 12, created.Margin(), 0.001)

	updated, err := a.Products.Update(ctx, created.ID, api.ProductUpdate{Stock: utils.Ptr(10)})
	require.NoError(t, err)
	require.Equal(t, 10, updated.Stock)
	require.Equal(t, "Auriculares", updated.Name)

	low, err := a.Products.LowStock(ctx)
	require.NoError(t, err)
	for _, p := range low {
		require.True(t, p.LowStock())
		require.NotEqual(t, created.ID, p.ID)
	}

	require.NoError(t, a.Products.Delete(ctx, created.ID))
	products, err = a.Products.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)

	_, err = a.Products.Get(ctx, 999)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Contains(t, err.Error(), "Producto no encontrado")
}

func TestProductPayloadValidatedBeforeSending(t *testing.T) {
	a, backend := newAPI(t, fakebackend.AdminEmail)

	_, err := a.Products.Create(context.Background(), api.ProductCreate{Code: "P-1", Name: "", SalePrice: 0})
	require.Error(t, err)
	_, err = a.Products.Update(context.Background(), 1, api.ProductUpdate{SalePrice: utils.Ptr(-1.0)})
	require.Error(t, err)
	require.Zero(t, backend.Calls("POST "+api.RouteProducts))
	require.Zero(t, backend.Calls("PUT "+api.RouteProducts+"/{id}"))
}

func TestSellerCannotManageProducts(t *testing.T) {
	a, _ := newAPI(t, fakebackend.SellerEmail)

	_, err := a.Products.Create(context.Background(), api.ProductCreate{Code: "X", Name: "X", SalePrice: 1})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	products, err := a.Products.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, products)
}

func TestRecordSaleAndQueries(t *testing.T) {
	seller, backend := newAPI(t, fakebackend.SellerEmail)
	ctx := context.Background()

	sale, err := seller.Sales.Record(ctx, api.SaleCreate{ProductID: 2, Quantity: 1, UnitPrice: 20})
	require.NoError(t, err)
	require.Equal(t, "Ratón", sale.ProductName)
	require.InDelta(t, 20, sale.Total, 0.001)
	require.InDelta(t, 1, sale.Commission, 0.001)

	_, err = seller.Sales.Record(ctx, api.SaleCreate{ProductID: 2, Quantity: 50, UnitPrice: 20})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	require.Contains(t, err.Error(), "Stock insuficiente")

	_, err = seller.Sales.Record(ctx, api.SaleCreate{ProductID: 2, Quantity: 0, UnitPrice: 20})
	require.Error(t, err)
	require.Equal(t, 2, backend.Calls("POST "+api.RouteSalesRegister))

	own, err := seller.Sales.List(ctx)
	require.NoError(t, err)
	require.Len(t, own, 1)

	got, err := seller.Sales.Get(ctx, sale.ID)
	require.NoError(t, err)
	require.Equal(t, sale.ID, got.ID)

	bySeller, err := seller.Sales.BySeller(ctx, sale.SellerID)
	require.NoError(t, err)
	require.Len(t, bySeller, 1)

	today := time.Now().UTC()
	inPeriod, err := seller.Sales.ByPeriod(ctx, today.AddDate(0, 0, -1), today.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, inPeriod, 1)

	future, err := seller.Sales.ByPeriod(ctx, today.AddDate(0, 0, 2), time.Time{})
	require.NoError(t, err)
	require.Empty(t, future)

	_, err = seller.Sales.ByPeriod(ctx, today, today.AddDate(0, 0, -3))
	require.Error(t, err)

	require.Equal(t, 2, backend.Calls("GET "+api.RouteSalesByPeriod))

	notifications, err := seller.Notifications.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, notifications, "low stock sale should notify")
	require.NoError(t, seller.Notifications.MarkRead(ctx, notifications[0].ID))
	notifications, err = seller.Notifications.List(ctx)
	require.NoError(t, err)
	require.True(t, notifications[0].Read)
}

func TestReports(t *testing.T) {
	admin, backend := newAPI(t, fakebackend.AdminEmail)
	ctx := context.Background()

	sellerTok, err := backend.IssueToken(fakebackend.SellerEmail, time.Hour)
	require.NoError(t, err)
	sellerUser, _ := backend.User(fakebackend.SellerEmail)
	sellerStore := token.NewKVStore(tokenfakerepo.NewFakeKV())
	require.NoError(t, sellerStore.Write(token.StoredCredential{Token: sellerTok, User: sellerUser}))
	seller := api.New(gateway.NewClient(sellerStore, gateway.WithBaseURL(backend.URL), gateway.WithLogger(zerolog.Nop())))

	_, err = seller.Sales.Record(ctx, api.SaleCreate{ProductID: 3, Quantity: 2, UnitPrice: 180})
	require.NoError(t, err)

	ranking, err := admin.Reports.Ranking(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	require.Equal(t, sellerUser.ID, ranking[0].SellerID)
	require.InDelta(t, 360, ranking[0].TotalSales, 0.001)
	require.InDelta(t, 18, ranking[0].TotalCommissions, 0.001)
	require.Equal(t, 1, ranking[0].SalesCount)

	m, err := admin.Reports.Metrics(ctx)
	require.NoError(t, err)
	require.InDelta(t, 360, m.TotalSales, 0.001)
	require.Equal(t, 3, m.TotalProducts)

	csv, err := admin.Reports.Export(ctx, api.ExportCSV)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(csv), "id,vendedor"))

	pdf, err := admin.Reports.Export(ctx, api.ExportPDF)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	_, err = admin.Reports.Export(ctx, api.ExportFormat("xlsx"))
	require.Error(t, err)

	_, err = seller.Reports.Ranking(ctx, time.Time{}, time.Time{})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSellers(t *testing.T) {
	a, _ := newAPI(t, fakebackend.AdminEmail)
	ctx := context.Background()

	created, err := a.Sellers.Register(ctx, api.SellerInput{
		Name: "Nueva Vendedora", Email: "nueva@ventas.com", Password: "secreto1", CommissionPercent: utils.Ptr(7.5),
	})
	require.NoError(t, err)
	require.Equal(t, users.RoleSeller, created.Role)
	require.InDelta(t, 7.5, *created.CommissionPercent, 0.001)

	_, err = a.Sellers.Register(ctx, api.SellerInput{Name: "Sin clave", Email: "x@ventas.com"})
	require.Error(t, err)
	_, err = a.Sellers.Register(ctx, api.SellerInput{Name: "Mala", Email: "no-email", Password: "x"})
	require.Error(t, err)

	updated, err := a.Sellers.Update(ctx, created.ID, api.SellerInput{Name: "Nueva Vendedora", Email: "nueva@ventas.com", CommissionPercent: utils.Ptr(10.0)})
	require.NoError(t, err)
	require.InDelta(t, 10, *updated.CommissionPercent, 0.001)

	list, err := a.Sellers.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, a.Sellers.Delete(ctx, created.ID))
	got, err := a.Sellers.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, got.Active)
}

func TestNotificationTest(t *testing.T) {
	a, _ := newAPI(t, fakebackend.AdminEmail)
	res, err := a.Notifications.Test(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Message)
	require.False(t, res.EmailSent)
}

func TestUnauthenticatedCallsFail(t *testing.T) {
	a, _ := newAPI(t, "")
	_, err := a.Sales.List(context.Background())
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestPeriodQueryEncoding(t *testing.T) {
	rec := &recordingRequester{}
	a := api.New(rec)
	from := time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	_, err := a.Reports.Ranking(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, api.RouteReportsRanking, rec.path)
	require.Equal(t, "2025-01-01", rec.query.Get("fecha_inicio"))
	require.Equal(t, "2025-01-31", rec.query.Get("fecha_fin"))

	_, err = a.Reports.Ranking(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Empty(t, rec.query)
}

type recordingRequester struct {
	path  string
	query url.Values
}

func (r *recordingRequester) Get(_ context.Context, path string, query url.Values, _ any) error {
	r.path, r.query = path, query
	return nil
}
func (r *recordingRequester) Post(context.Context, string, any, any) error { return nil }
func (r *recordingRequester) Put(context.Context, string, any, any) error { return nil }
func (r *recordingRequester) Patch(context.Context, string, any, any) error { return nil }
func (r *recordingRequester) Delete(context.Context, string) error { return nil }
func (r *recordingRequester) Download(context.Context, string) ([]byte, error) {
	return nil, nil
}
