package api

import "context"

// Service is an outsourced service that can appear in compositions and
// production costs.
type Service struct {
	ID           string   `json:"id"`
	TenantID     string   `json:"tenantId"`
	CompanyID    string   `json:"companyId"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Description  *string  `json:"description,omitempty"`
	UnitPrice    *float64 `json:"unitPrice,omitempty"`
	CostCenterID *string  `json:"costCenterId,omitempty"`
	IsActive     bool     `json:"isActive"`
	Notes        *string  `json:"notes,omitempty"`
}

func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	var out []Service
	if err := c.get(ctx, "/services", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetService(ctx context.Context, id string) (*Service, error) {
	var out Service
	if err := c.get(ctx, "/services/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateService(ctx context.Context, in Service) (*Service, error) {
	var out Service
	if err := c.post(ctx, "/services", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateService(ctx context.Context, id string, in Service) (*Service, error) {
	var out Service
	if err := c.put(ctx, "/services/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteService(ctx context.Context, id string) error {
	return c.del(ctx, "/services/"+id)
}
