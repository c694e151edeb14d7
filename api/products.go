package api

import (
	"context"
	"fmt"
)

type Products struct {
	r Requester
}

func (p *Products) List(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := p.r.Get(ctx, RouteProducts, nil, &out); err != nil {
		return nil, fmt.Errorf("[Products.List] %w", err)
	}
	return out, nil
}

func (p *Products) Get(ctx context.Context, id int) (*Product, error) {
	var out Product
	if err := p.r.Get(ctx, withID(RouteProducts, id), nil, &out); err != nil {
		return nil, fmt.Errorf("[Products.Get] %w", err)
	}
	return &out, nil
}

// LowStock lists products at or below their minimum stock
func (p *Products) LowStock(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := p.r.Get(ctx, RouteProductsLowStock, nil, &out); err != nil {
		return nil, fmt.Errorf("[Products.LowStock] %w", err)
	}
	return out, nil
}

func (p *Products) Create(ctx context.Context, in ProductCreate) (*Product, error) {
	if err := validatePayload("product", in); err != nil {
		return nil, err
	}
	var out Product
	if err := p.r.Post(ctx, RouteProducts, in, &out); err != nil {
		return nil, fmt.Errorf("[Products.Create] %w", err)
	}
	return &out, nil
}

func (p *Products) Update(ctx context.Context, id int, in ProductUpdate) (*Product, error) {
	if err := validatePayload("product", in); err != nil {
		return nil, err
	}
	var out Product
	if err := p.r.Put(ctx, withID(RouteProducts, id), in, &out); err != nil {
		return nil, fmt.Errorf("[Products.Update] %w", err)
	}
	return &out, nil
}

func (p *Products) Delete(ctx context.Context, id int) error {
	if err := p.r.Delete(ctx, withID(RouteProducts, id)); err != nil {
		return fmt.Errorf("[Products.Delete] %w", err)
	}
	return nil
}
