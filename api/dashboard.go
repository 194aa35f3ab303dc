package api

import "context"

// ProductionSummary is the dashboard headline figures for one company.
type ProductionSummary struct {
	TotalOrders       int     `json:"totalOrders"`
	OrdersInProgress  int     `json:"ordersInProgress"`
	OrdersCompleted   int     `json:"ordersCompleted"`
	OrdersPending     int     `json:"ordersPending"`
	TotalProduction   float64 `json:"totalProduction"`
	TotalCosts        float64 `json:"totalCosts"`
	LowStockItems     int     `json:"lowStockItems"`
	TotalStockValue   float64 `json:"totalStockValue"`
	MonthlyProduction float64 `json:"monthlyProduction"`
	MonthlyCosts      float64 `json:"monthlyCosts"`
}

func (c *Client) DashboardSummary(ctx context.Context) (*ProductionSummary, error) {
	var out ProductionSummary
	if err := c.get(ctx, "/dashboard/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
