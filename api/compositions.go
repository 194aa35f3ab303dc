package api

import (
	"context"
	"net/url"
	"strconv"
)

type CompositionItemType string

const (
	ItemRawMaterial CompositionItemType = "RAW_MATERIAL"
	ItemService     CompositionItemType = "SERVICE"
)

// Composition is a versioned bill of materials for one product.
type Composition struct {
	ID                  string   `json:"id"`
	TenantID            string   `json:"tenantId"`
	CompanyID           string   `json:"companyId"`
	ProductionProductID string   `json:"productionProductId"`
	Name                string   `json:"name"`
	Version             int      `json:"version"`
	EffectiveDate       *string  `json:"effectiveDate,omitempty"`
	ExpirationDate      *string  `json:"expirationDate,omitempty"`
	IsActive            bool     `json:"isActive"`
	Notes               *string  `json:"notes,omitempty"`
	ApprovedBy          *string  `json:"approvedBy,omitempty"`
	ApprovedAt          *string  `json:"approvedAt,omitempty"`
	ProductName         *string  `json:"productName,omitempty"`
	ItemsCount          *int     `json:"itemsCount,omitempty"`
	TotalCost           *float64 `json:"totalCost,omitempty"`
}

// CompositionItem is one line of a bill of materials: a raw material or
// an outsourced service with its quantity, unit cost, and expected loss.
type CompositionItem struct {
	ID             string              `json:"id"`
	CompositionID  string              `json:"compositionId"`
	ItemType       CompositionItemType `json:"itemType"`
	RawMaterialID  *string             `json:"rawMaterialId,omitempty"`
	ServiceID      *string             `json:"serviceId,omitempty"`
	ItemName       *string             `json:"itemName,omitempty"`
	Quantity       float64             `json:"quantity"`
	UnitType       UnitType            `json:"unitType"`
	UnitCost       float64             `json:"unitCost"`
	LossPercentage float64             `json:"lossPercentage"`
	TotalCost      float64             `json:"totalCost"`
}

// ItemCost is the composition cost formula: quantity times unit cost,
// grossed up by the expected loss percentage.
func ItemCost(quantity, unitCost, lossPercentage float64) float64 {
	return quantity * unitCost * (1 + lossPercentage/100)
}

// TotalCost rolls the item costs of a composition up into one figure.
func TotalCost(items []CompositionItem) float64 {
	var total float64
	for _, item := range items {
		total += ItemCost(item.Quantity, item.UnitCost, item.LossPercentage)
	}
	return total
}

// ListCompositions returns the compositions of a company.
func (c *Client) ListCompositions(ctx context.Context, companyID string, activeOnly bool) ([]Composition, error) {
	query := url.Values{}
	query.Set("companyId", companyID)
	query.Set("activeOnly", strconv.FormatBool(activeOnly))

	var out []Composition
	if err := c.get(ctx, "/compositions", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetComposition(ctx context.Context, id string) (*Composition, error) {
	var out Composition
	if err := c.get(ctx, "/compositions/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCompositionsByProduct returns every composition version of one
// product.
func (c *Client) ListCompositionsByProduct(ctx context.Context, productID string) ([]Composition, error) {
	var out []Composition
	if err := c.get(ctx, "/compositions/product/"+productID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateComposition(ctx context.Context, in Composition) (*Composition, error) {
	var out Composition
	if err := c.post(ctx, "/compositions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateComposition(ctx context.Context, id string, in Composition) (*Composition, error) {
	var out Composition
	if err := c.put(ctx, "/compositions/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComposition(ctx context.Context, id string) error {
	return c.del(ctx, "/compositions/"+id)
}

// ApproveComposition marks a composition as the approved version for its
// product.
func (c *Client) ApproveComposition(ctx context.Context, id string) (*Composition, error) {
	var out Composition
	if err := c.post(ctx, "/compositions/"+id+"/approve", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCompositionItems(ctx context.Context, compositionID string) ([]CompositionItem, error) {
	query := url.Values{}
	query.Set("compositionId", compositionID)

	var out []CompositionItem
	if err := c.get(ctx, "/composition-items", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCompositionItem(ctx context.Context, in CompositionItem) (*CompositionItem, error) {
	var out CompositionItem
	if err := c.post(ctx, "/composition-items", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCompositionItem(ctx context.Context, id string) error {
	return c.del(ctx, "/composition-items/"+id)
}
