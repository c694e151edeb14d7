package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-sales-client/api"
	"github.com/jrsteele09/go-sales-client/guard"
	"github.com/spf13/cobra"
)

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
}

func (c *cli) productsCmd() *cobra.Command {
	var lowStock bool
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requirePage(guard.RouteProducts); err != nil {
				return err
			}
			list := c.app.API.Products.List
			if lowStock {
				list = c.app.API.Products.LowStock
			}
			products, err := list(cmd.Context())
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintln(w, "ID\tCODE\tNAME\tPRICE\tSTOCK\tMIN\t")
			for _, p := range products {
				flag := ""
				if p.LowStock() {
					flag = "LOW"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\t%d\t%s\n", p.ID, p.Code, p.Name, p.SalePrice, p.Stock, p.MinStock, flag)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&lowStock, "low-stock", false, "only products at or below minimum stock")
	return cmd
}

func (c *cli) salesCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "List sales (all for admins, your own for sellers)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requirePage(guard.RouteSales); err != nil {
				return err
			}
			start, end, err := parsePeriod(from, to)
			if err != nil {
				return err
			}
			var sales []api.Sale
			if start.IsZero() && end.IsZero() {
				sales, err = c.app.API.Sales.List(cmd.Context())
			} else {
				sales, err = c.app.API.Sales.ByPeriod(cmd.Context(), start, end)
			}
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintln(w, "ID\tDATE\tSELLER\tPRODUCT\tQTY\tTOTAL\tCOMMISSION")
			for _, s := range sales {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%.2f\t%.2f\n", s.ID, s.Date, s.SellerName, s.ProductName, s.Quantity, s.Total, s.Commission)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	return cmd
}

func (c *cli) recordSaleCmd() *cobra.Command {
	var in api.SaleCreate
	cmd := &cobra.Command{
		Use:   "record-sale",
		Short: "Record a sale for the logged in seller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requirePage(guard.RouteSales); err != nil {
				return err
			}
			if preview := c.app.Session.User().Commission(in.Total()); preview > 0 {
				fmt.Fprintf(c.out, "Estimated commission: %.2f\n", preview)
			}
			sale, err := c.app.API.Sales.Record(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Sale %d recorded: %d x %s = %.2f (commission %.2f)\n",
				sale.ID, sale.Quantity, sale.ProductName, sale.Total, sale.Commission)
			return nil
		},
	}
	cmd.Flags().IntVar(&in.ProductID, "product", 0, "product id")
	cmd.Flags().IntVar(&in.Quantity, "qty", 1, "quantity")
	cmd.Flags().Float64Var(&in.UnitPrice, "price", 0, "unit price")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func (c *cli) rankingCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Rank sellers by sales (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requirePage(guard.RouteReports); err != nil {
				return err
			}
			start, end, err := parsePeriod(from, to)
			if err != nil {
				return err
			}
			ranking, err := c.app.API.Reports.Ranking(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintln(w, "#\tSELLER\tSALES\tTOTAL\tCOMMISSIONS")
			for i, r := range ranking {
				fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%.2f\n", i+1, r.SellerName, r.SalesCount, r.TotalSales, r.TotalCommissions)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	return cmd
}

func (c *cli) metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show dashboard totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requirePage(guard.RouteDashboard); err != nil {
				return err
			}
			m, err := c.app.API.Reports.Metrics(cmd.Context())
			if err != nil {
				return err
			}
			w := c.table()
			fmt.Fprintf(w, "Total sales\t%.2f\n", m.TotalSales)
			fmt.Fprintf(w, "Total commissions\t%.2f\n", m.TotalCommissions)
			fmt.Fprintf(w, "Sales this month\t%.2f\n", m.SalesThisMonth)
			fmt.Fprintf(w, "Commissions this month\t%.2f\n", m.CommissionsThisMonth)
			fmt.Fprintf(w, "Products\t%d\n", m.TotalProducts)
			fmt.Fprintf(w, "Low stock\t%d\n", m.LowStockProducts)
			return w.Flush()
		},
	}
}

func (c *cli) notificationsCmd() *cobra.Command {
	var markRead int
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requirePage(guard.RouteDashboard); err != nil {
				return err
			}
			if markRead > 0 {
				if err := c.app.API.Notifications.MarkRead(cmd.Context(), markRead); err != nil {
					return err
				}
			}
			list, err := c.app.API.Notifications.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(c.out, "No notifications")
				return nil
			}
			w := c.table()
			for _, n := range list {
				status := "new"
				if n.Read {
					status = "read"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", n.ID, status, n.Type, n.Message)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&markRead, "mark-read", 0, "mark a notification as read first")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export <csv|pdf>",
		Short:     "Download the sales report (admin)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(api.ExportCSV), string(api.ExportPDF)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requirePage(guard.RouteReports); err != nil {
				return err
			}
			format := api.ExportFormat(args[0])
			data, err := c.app.API.Reports.Export(cmd.Context(), format)
			if err != nil {
				return err
			}
			if out == "" {
				out = "ventas." + string(format)
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(c.out, "Wrote %d bytes to %s\n", len(data), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default ventas.<format>)")
	return cmd
}

func parsePeriod(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = time.Parse(api.DateLayout, from); err != nil {
			return start, end, fmt.Errorf("--from: %w", err)
		}
	}
	if to != "" {
		if end, err = time.Parse(api.DateLayout, to); err != nil {
			return start, end, fmt.Errorf("--to: %w", err)
		}
	}
	return start, end, nil
}
