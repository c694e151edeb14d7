package fakebackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-sales-client/api"
	"github.com/jrsteele09/go-sales-client/users"
)

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "id must be an integer")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return false
	}
	return true
}

// Sellers

func (b *Backend) sellers() []users.User {
	out := make([]users.User, 0, len(b.accounts))
	for _, acc := range b.accounts {
		if acc.user.Role == users.RoleSeller {
			out = append(out, acc.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Backend) accountByID(id int) *account {
	for _, acc := range b.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

func (b *Backend) ListSellersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		writeJSON(w, http.StatusOK, b.sellers())
	}
}

func (b *Backend) GetSellerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		caller := callerFrom(r)
		if !caller.IsAdmin() && caller.ID != id {
			writeDetail(w, http.StatusForbidden, "No tienes permisos para ver este vendedor")
			return
		}
		b.mu.RLock()
		defer b.mu.RUnlock()
		acc := b.accountByID(id)
		if acc == nil {
			writeDetail(w, http.StatusNotFound, "Vendedor no encontrado")
			return
		}
		writeJSON(w, http.StatusOK, acc.user)
	}
}

func (b *Backend) RegisterSellerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in api.SellerInput
		if !decodeBody(w, r, &in) {
			return
		}
		if in.Email == "" || in.Password == "" || in.Name == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "nombre, email y password son obligatorios")
			return
		}
		if _, exists := b.User(in.Email); exists {
			writeDetail(w, http.StatusBadRequest, "El email ya está registrado")
			return
		}
		user, err := b.AddUser(in.Name, in.Email, in.Password, users.RoleSeller, in.CommissionPercent)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

func (b *Backend) UpdateSellerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var in api.SellerInput
		if !decodeBody(w, r, &in) {
			return
		}
		var hash string
		if in.Password != "" {
			var err error
			if hash, err = hashPassword(in.Password); err != nil {
				writeDetail(w, http.StatusInternalServerError, err.Error())
				return
			}
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		acc := b.accountByID(id)
		if acc == nil {
			writeDetail(w, http.StatusNotFound, "Vendedor no encontrado")
			return
		}
		if in.Name != "" {
			acc.user.Name = in.Name
		}
		if in.Email != "" && in.Email != acc.user.Email {
			delete(b.accounts, acc.user.Email)
			acc.user.Email = in.Email
			b.accounts[in.Email] = acc
		}
		if in.CommissionPercent != nil {
			acc.user.CommissionPercent = in.CommissionPercent
		}
		if in.Active != nil {
			acc.user.Active = *in.Active
		}
		if hash != "" {
			acc.passwordHash = hash
		}
		writeJSON(w, http.StatusOK, acc.user)
	}
}

// DeleteSellerHandler deactivates rather than removes, so sales keep their seller
func (b *Backend) DeleteSellerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		acc := b.accountByID(id)
		if acc == nil {
			writeDetail(w, http.StatusNotFound, "Vendedor no encontrado")
			return
		}
		acc.user.Active = false
		writeJSON(w, http.StatusOK, map[string]string{"mensaje": "Vendedor desactivado"})
	}
}

// Products

func (b *Backend) activeProducts(filter func(*api.Product) bool) []api.Product {
	out := make([]api.Product, 0, len(b.products))
	for _, p := range b.products {
		if p.Active && (filter == nil || filter(p)) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Backend) ListProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		writeJSON(w, http.StatusOK, b.activeProducts(nil))
	}
}

func (b *Backend) LowStockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		writeJSON(w, http.StatusOK, b.activeProducts(func(p *api.Product) bool { return p.LowStock() }))
	}
}

func (b *Backend) GetProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		b.mu.RLock()
		defer b.mu.RUnlock()
		p, found := b.products[id]
		if !found {
			writeDetail(w, http.StatusNotFound, "Producto no encontrado")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (b *Backend) CreateProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in api.ProductCreate
		if !decodeBody(w, r, &in) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, p := range b.products {
			if p.Code == in.Code {
				writeDetail(w, http.StatusBadRequest, "El código de producto ya existe")
				return
			}
		}
		b.nextProductID++
		p := &api.Product{
			ID:            b.nextProductID,
			Code:          in.Code,
			Name:          in.Name,
			Description:   in.Description,
			SalePrice:     in.SalePrice,
			PurchasePrice: in.PurchasePrice,
			Stock:         in.Stock,
			MinStock:      in.MinStock,
			Active:        true,
			CreatedAt:     b.now().UTC().Format(time.RFC3339),
		}
		b.products[p.ID] = p
		writeJSON(w, http.StatusCreated, p)
	}
}

func (b *Backend) UpdateProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var in api.ProductUpdate
		if !decodeBody(w, r, &in) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		p, found := b.products[id]
		if !found {
			writeDetail(w, http.StatusNotFound, "Producto no encontrado")
			return
		}
		if in.Code != nil {
			p.Code = *in.Code
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Description != nil {
			p.Description = in.Description
		}
		if in.SalePrice != nil {
			p.SalePrice = *in.SalePrice
		}
		if in.PurchasePrice != nil {
			p.PurchasePrice = *in.PurchasePrice
		}
		if in.Stock != nil {
			p.Stock = *in.Stock
		}
		if in.MinStock != nil {
			p.MinStock = *in.MinStock
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (b *Backend) DeleteProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		p, found := b.products[id]
		if !found {
			writeDetail(w, http.StatusNotFound, "Producto no encontrado")
			return
		}
		p.Active = false
		w.WriteHeader(http.StatusNoContent)
	}
}

// Sales

func (b *Backend) visibleSales(caller *users.User, filter func(api.Sale) bool) []api.Sale {
	out := make([]api.Sale, 0, len(b.sales))
	for _, s := range b.sales {
		if !caller.IsAdmin() && s.SellerID != caller.ID {
			continue
		}
		if filter == nil || filter(s) {
			out = append(out, s)
		}
	}
	return out
}

func (b *Backend) ListSalesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		writeJSON(w, http.StatusOK, b.visibleSales(callerFrom(r), nil))
	}
}

func (b *Backend) GetSaleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		b.mu.RLock()
		defer b.mu.RUnlock()
		for _, s := range b.visibleSales(callerFrom(r), nil) {
			if s.ID == id {
				writeJSON(w, http.StatusOK, s)
				return
			}
		}
		writeDetail(w, http.StatusNotFound, "Venta no encontrada")
	}
}

func (b *Backend) SalesBySellerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		caller := callerFrom(r)
		if !caller.IsAdmin() && caller.ID != id {
			writeDetail(w, http.StatusForbidden, "No tienes permisos para ver estas ventas")
			return
		}
		b.mu.RLock()
		defer b.mu.RUnlock()
		writeJSON(w, http.StatusOK, b.visibleSales(caller, func(s api.Sale) bool { return s.SellerID == id }))
	}
}

func (b *Backend) SalesByPeriodHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inPeriod, err := periodFilter(r)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		b.mu.RLock()
		defer b.mu.RUnlock()
		writeJSON(w, http.StatusOK, b.visibleSales(callerFrom(r), inPeriod))
	}
}

func (b *Backend) RecordSaleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in api.SaleCreate
		if !decodeBody(w, r, &in) {
			return
		}
		if in.Quantity <= 0 {
			writeDetail(w, http.StatusUnprocessableEntity, "La cantidad debe ser mayor que cero")
			return
		}
		caller := callerFrom(r)

		b.mu.Lock()
		defer b.mu.Unlock()
		p, found := b.products[in.ProductID]
		if !found || !p.Active {
			writeDetail(w, http.StatusNotFound, "Producto no encontrado")
			return
		}
		if p.Stock < in.Quantity {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Stock insuficiente. Disponible: %d", p.Stock))
			return
		}
		p.Stock -= in.Quantity

		total := in.Total()
		sale := api.Sale{
			ID:          len(b.sales) + 1,
			SellerID:    caller.ID,
			SellerName:  caller.Name,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Total:       total,
			Commission:  caller.Commission(total),
			Date:        b.now().UTC().Format(time.RFC3339),
		}
		b.sales = append(b.sales, sale)
		if p.LowStock() {
			b.notify("stock_bajo", fmt.Sprintf("El producto %s tiene stock bajo (%d)", p.Name, p.Stock))
		}
		writeJSON(w, http.StatusCreated, sale)
	}
}

func periodFilter(r *http.Request) (func(api.Sale) bool, error) {
	var from, to time.Time
	var err error
	if v := r.URL.Query().Get("fecha_inicio"); v != "" {
		if from, err = time.Parse(api.DateLayout, v); err != nil {
			return nil, fmt.Errorf("fecha_inicio: %w", err)
		}
	}
	if v := r.URL.Query().Get("fecha_fin"); v != "" {
		if to, err = time.Parse(api.DateLayout, v); err != nil {
			return nil, fmt.Errorf("fecha_fin: %w", err)
		}
	}
	return func(s api.Sale) bool {
		day, err := time.Parse(api.DateLayout, strings.SplitN(s.Date, "T", 2)[0])
		if err != nil {
			return false
		}
		if !from.IsZero() && day.Before(from) {
			return false
		}
		if !to.IsZero() && day.After(to) {
			return false
		}
		return true
	}, nil
}

// Reports

func (b *Backend) RankingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inPeriod, err := periodFilter(r)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		b.mu.RLock()
		defer b.mu.RUnlock()

		bySeller := map[int]*api.SellerRanking{}
		for _, s := range b.sales {
			if !inPeriod(s) {
				continue
			}
			row, ok := bySeller[s.SellerID]
			if !ok {
				row = &api.SellerRanking{SellerID: s.SellerID, SellerName: s.SellerName}
				bySeller[s.SellerID] = row
			}
			row.TotalSales += s.Total
			row.TotalCommissions += s.Commission
			row.SalesCount++
		}
		out := make([]api.SellerRanking, 0, len(bySeller))
		for _, row := range bySeller {
			out = append(out, *row)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].TotalSales == out[j].TotalSales {
				return out[i].SellerID < out[j].SellerID
			}
			return out[i].TotalSales > out[j].TotalSales
		})
		writeJSON(w, http.StatusOK, out)
	}
}

func (b *Backend) MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()

		caller := callerFrom(r)
		month := b.now().UTC().Format("2006-01")
		var m api.Metrics
		for _, s := range b.visibleSales(caller, nil) {
			m.TotalSales += s.Total
			m.TotalCommissions += s.Commission
			if strings.HasPrefix(s.Date, month) {
				m.SalesThisMonth += s.Total
				m.CommissionsThisMonth += s.Commission
			}
		}
		products := b.activeProducts(nil)
		m.TotalProducts = len(products)
		for _, p := range products {
			if p.LowStock() {
				m.LowStockProducts++
			}
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (b *Backend) ExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := api.ExportFormat(r.PathValue("format"))
		if !format.Valid() {
			writeDetail(w, http.StatusBadRequest, "Formato no soportado")
			return
		}
		b.mu.RLock()
		sales := append([]api.Sale(nil), b.sales...)
		b.mu.RUnlock()

		var sb strings.Builder
		sb.WriteString("id,vendedor,producto,cantidad,precio_total,comision,fecha\n")
		for _, s := range sales {
			fmt.Fprintf(&sb, "%d,%s,%s,%d,%.2f,%.2f,%s\n", s.ID, s.SellerName, s.ProductName, s.Quantity, s.Total, s.Commission, s.Date)
		}

		switch format {
		case api.ExportCSV:
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="ventas.csv"`)
			_, _ = w.Write([]byte(sb.String()))
		case api.ExportPDF:
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="ventas.pdf"`)
			_, _ = w.Write([]byte("%PDF-1.4\n" + sb.String() + "%%EOF\n"))
		}
	}
}

// Notifications

func (b *Backend) notify(kind, message string) {
	b.notifications = append(b.notifications, api.Notification{
		ID:        len(b.notifications) + 1,
		Type:      kind,
		Message:   message,
		CreatedAt: b.now().UTC().Format(time.RFC3339),
	})
}

func (b *Backend) ListNotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		writeJSON(w, http.StatusOK, append([]api.Notification{}, b.notifications...))
	}
}

func (b *Backend) TestNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.notify("test", "Notificación de prueba")
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, api.NotificationTest{
			Message: "Notificación de prueba enviada",
		})
	}
}

func (b *Backend) MarkNotificationReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.notifications {
			if b.notifications[i].ID == id {
				b.notifications[i].Read = true
				writeJSON(w, http.StatusOK, b.notifications[i])
				return
			}
		}
		writeDetail(w, http.StatusNotFound, "Notificación no encontrada")
	}
}
