package api

import (
	"context"
	"fmt"
	"time"
)

type Reports struct {
	r Requester
}

// Ranking orders sellers by sales total. Zero times leave the period open.
func (r *Reports) Ranking(ctx context.Context, from, to time.Time) ([]SellerRanking, error) {
	var out []SellerRanking
	if err := r.r.Get(ctx, RouteReportsRanking, periodQuery(from, to), &out); err != nil {
		return nil, fmt.Errorf("[Reports.Ranking] %w", err)
	}
	return out, nil
}

func (r *Reports) Metrics(ctx context.Context) (*Metrics, error) {
	var out Metrics
	if err := r.r.Get(ctx, RouteReportsMetrics, nil, &out); err != nil {
		return nil, fmt.Errorf("[Reports.Metrics] %w", err)
	}
	return &out, nil
}

// Export downloads the sales report as a file
func (r *Reports) Export(ctx context.Context, format ExportFormat) ([]byte, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("[Reports.Export] unsupported format %q", format)
	}
	data, err := r.r.Download(ctx, RouteReportsExport+"/"+string(format))
	if err != nil {
		return nil, fmt.Errorf("[Reports.Export] %w", err)
	}
	return data, nil
}
