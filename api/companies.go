package api

import (
	"context"
	"net/url"
	"strconv"
)

// Company is a tenant-scoped legal entity that owns production data.
type Company struct {
	ID                    string   `json:"id"`
	TenantID              string   `json:"tenantId"`
	CorporateName         string   `json:"corporateName"`
	TradeName             *string  `json:"tradeName,omitempty"`
	CNPJ                  *string  `json:"cnpj,omitempty"`
	StateRegistration     *string  `json:"stateRegistration,omitempty"`
	MunicipalRegistration *string  `json:"municipalRegistration,omitempty"`
	Phone                 *string  `json:"phone,omitempty"`
	Email                 *string  `json:"email,omitempty"`
	ISSRate               *float64 `json:"issRate,omitempty"`
	FunruralRate          *float64 `json:"funruralRate,omitempty"`
	Manager               *string  `json:"manager,omitempty"`
	Factory               bool     `json:"factory,omitempty"`
	SupplierFlag          bool     `json:"supplierFlag,omitempty"`
	CustomerFlag          bool     `json:"customerFlag,omitempty"`
	TransporterFlag       bool     `json:"transporterFlag,omitempty"`
	IsActive              bool     `json:"isActive"`
	CreatedAt             string   `json:"createdAt,omitempty"`
	UpdatedAt             string   `json:"updatedAt,omitempty"`
}

// Page is the backend's paginated list envelope.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Number        int `json:"number"`
}

// ListCompanies returns one page of companies visible to the session's
// tenant.
func (c *Client) ListCompanies(ctx context.Context, page, size int) (*Page[Company], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var out Page[Company]
	if err := c.get(ctx, "/companies", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCompany(ctx context.Context, id string) (*Company, error) {
	var out Company
	if err := c.get(ctx, "/companies/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCompany(ctx context.Context, in Company) (*Company, error) {
	var out Company
	if err := c.post(ctx, "/companies", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCompany(ctx context.Context, id string, in Company) (*Company, error) {
	var out Company
	if err := c.put(ctx, "/companies/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	return c.del(ctx, "/companies/"+id)
}
