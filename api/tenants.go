package api

import "context"

type TenantStatus string

const (
	TenantActive   TenantStatus = "ACTIVE"
	TenantInactive TenantStatus = "INACTIVE"
)

// Tenant is a customer/organization namespace; every session is scoped
// to exactly one.
type Tenant struct {
	ID        string       `json:"id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Status    TenantStatus `json:"status"`
	CreatedAt string       `json:"createdAt,omitempty"`
	UpdatedAt string       `json:"updatedAt,omitempty"`
}

func (c *Client) ListTenants(ctx context.Context) ([]Tenant, error) {
	var out []Tenant
	if err := c.get(ctx, "/tenants", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	var out Tenant
	if err := c.get(ctx, "/tenants/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTenant(ctx context.Context, in Tenant) (*Tenant, error) {
	var out Tenant
	if err := c.post(ctx, "/tenants", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTenant(ctx context.Context, id string, in Tenant) (*Tenant, error) {
	var out Tenant
	if err := c.put(ctx, "/tenants/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTenant(ctx context.Context, id string) error {
	return c.del(ctx, "/tenants/"+id)
}
