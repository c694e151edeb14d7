// Package api exposes the backend's resource endpoints on top of the gateway.
// Every call goes through the gateway, so a 401 from any of them tears the
// session down.
package api

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-sales-client/gateway"
)

// Requester is the subset of the gateway the resource clients use
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, result any) error
	Post(ctx context.Context, path string, body, result any) error
	Put(ctx context.Context, path string, body, result any) error
	Patch(ctx context.Context, path string, body, result any) error
	Delete(ctx context.Context, path string) error
	Download(ctx context.Context, path string) ([]byte, error)
}

var _ Requester = (*gateway.Client)(nil)

type API struct {
	Sellers       *Sellers
	Products      *Products
	Sales         *Sales
	Reports       *Reports
	Notifications *Notifications
}

func New(r Requester) *API {
	return &API{
		Sellers:       &Sellers{r: r},
		Products:      &Products{r: r},
		Sales:         &Sales{r: r},
		Reports:       &Reports{r: r},
		Notifications: &Notifications{r: r},
	}
}
