package api

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// DateLayout is the format the backend expects for date filters
const DateLayout = "2006-01-02"

type Sales struct {
	r Requester
}

// List returns all sales for admins and the caller's own sales for sellers
func (s *Sales) List(ctx context.Context) ([]Sale, error) {
	var out []Sale
	if err := s.r.Get(ctx, RouteSales, nil, &out); err != nil {
		return nil, fmt.Errorf("[Sales.List] %w", err)
	}
	return out, nil
}

func (s *Sales) Get(ctx context.Context, id int) (*Sale, error) {
	var out Sale
	if err := s.r.Get(ctx, withID(RouteSales, id), nil, &out); err != nil {
		return nil, fmt.Errorf("[Sales.Get] %w", err)
	}
	return &out, nil
}

// Record registers a sale for the logged in seller
func (s *Sales) Record(ctx context.Context, in SaleCreate) (*Sale, error) {
	if err := validatePayload("sale", in); err != nil {
		return nil, err
	}
	var out Sale
	if err := s.r.Post(ctx, RouteSalesRegister, in, &out); err != nil {
		return nil, fmt.Errorf("[Sales.Record] %w", err)
	}
	return &out, nil
}

func (s *Sales) BySeller(ctx context.Context, sellerID int) ([]Sale, error) {
	var out []Sale
	if err := s.r.Get(ctx, withID(RouteSalesBySeller, sellerID), nil, &out); err != nil {
		return nil, fmt.Errorf("[Sales.BySeller] %w", err)
	}
	return out, nil
}

// ByPeriod lists sales between from and to, inclusive of both days. A zero
// time leaves that end open.
func (s *Sales) ByPeriod(ctx context.Context, from, to time.Time) ([]Sale, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("[Sales.ByPeriod] end date %s before start date %s", to.Format(DateLayout), from.Format(DateLayout))
	}
	var out []Sale
	if err := s.r.Get(ctx, RouteSalesByPeriod, periodQuery(from, to), &out); err != nil {
		return nil, fmt.Errorf("[Sales.ByPeriod] %w", err)
	}
	return out, nil
}

func periodQuery(from, to time.Time) url.Values {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("fecha_inicio", from.Format(DateLayout))
	}
	if !to.IsZero() {
		q.Set("fecha_fin", to.Format(DateLayout))
	}
	return q
}
