package api

import (
	"context"
	"net/url"
	"strconv"
)

// UnitType is a unit of measure shared by raw materials and products.
type UnitType string

const (
	UnitUnit      UnitType = "UN"
	UnitKilogram  UnitType = "KG"
	UnitGram      UnitType = "G"
	UnitMeter     UnitType = "M"
	UnitSquareM   UnitType = "M2"
	UnitCubicM    UnitType = "M3"
	UnitLiter     UnitType = "L"
	UnitMillilitr UnitType = "ML"
	UnitPiece     UnitType = "PC"
	UnitBox       UnitType = "CX"
	UnitBundle    UnitType = "FD"
	UnitRoll      UnitType = "RL"
	UnitHour      UnitType = "HR"
)

// RawMaterial is a purchasable input tracked per company.
type RawMaterial struct {
	ID                string   `json:"id"`
	TenantID          string   `json:"tenantId"`
	CompanyID         string   `json:"companyId"`
	Code              string   `json:"code"`
	Name              string   `json:"name"`
	UnitType          UnitType `json:"unitType"`
	SupplierID        *string  `json:"supplierId,omitempty"`
	AverageCost       *float64 `json:"averageCost,omitempty"`
	LastPurchasePrice *float64 `json:"lastPurchasePrice,omitempty"`
	LastPurchaseDate  *string  `json:"lastPurchaseDate,omitempty"`
	StockControl      bool     `json:"stockControl"`
	MinStock          *float64 `json:"minStock,omitempty"`
	MaxStock          *float64 `json:"maxStock,omitempty"`
	ReorderPoint      *float64 `json:"reorderPoint,omitempty"`
	LeadTimeDays      *int     `json:"leadTimeDays,omitempty"`
	IsActive          bool     `json:"isActive"`
}

// RawMaterialStock is the current on-hand position of one material.
type RawMaterialStock struct {
	ID            string   `json:"id"`
	RawMaterialID string   `json:"rawMaterialId"`
	CompanyID     string   `json:"companyId"`
	Quantity      float64  `json:"quantity"`
	ReservedQty   float64  `json:"reservedQty"`
	AvailableQty  float64  `json:"availableQty"`
	TotalCost     *float64 `json:"totalCost,omitempty"`
}

// RawMaterialMovement is one stock in/out entry.
type RawMaterialMovement struct {
	ID            string   `json:"id"`
	RawMaterialID string   `json:"rawMaterialId"`
	CompanyID     string   `json:"companyId"`
	MovementType  string   `json:"movementType"` // IN, OUT, ADJUSTMENT
	Quantity      float64  `json:"quantity"`
	UnitCost      *float64 `json:"unitCost,omitempty"`
	Reference     *string  `json:"reference,omitempty"`
	MovementDate  string   `json:"movementDate"`
	Notes         *string  `json:"notes,omitempty"`
}

// ListRawMaterials returns the materials of a company; activeOnly trims
// the list to active ones.
func (c *Client) ListRawMaterials(ctx context.Context, companyID string, activeOnly bool) ([]RawMaterial, error) {
	query := url.Values{}
	query.Set("companyId", companyID)
	query.Set("activeOnly", strconv.FormatBool(activeOnly))

	var out []RawMaterial
	if err := c.get(ctx, "/raw-materials", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRawMaterial(ctx context.Context, id string) (*RawMaterial, error) {
	var out RawMaterial
	if err := c.get(ctx, "/raw-materials/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRawMaterial(ctx context.Context, in RawMaterial) (*RawMaterial, error) {
	var out RawMaterial
	if err := c.post(ctx, "/raw-materials", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRawMaterial(ctx context.Context, id string, in RawMaterial) (*RawMaterial, error) {
	var out RawMaterial
	if err := c.put(ctx, "/raw-materials/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRawMaterial(ctx context.Context, id string) error {
	return c.del(ctx, "/raw-materials/"+id)
}

func (c *Client) ListRawMaterialStocks(ctx context.Context, companyID string) ([]RawMaterialStock, error) {
	query := url.Values{}
	query.Set("companyId", companyID)

	var out []RawMaterialStock
	if err := c.get(ctx, "/raw-material-stocks", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRawMaterialMovement(ctx context.Context, in RawMaterialMovement) (*RawMaterialMovement, error) {
	var out RawMaterialMovement
	if err := c.post(ctx, "/raw-material-movements", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListRawMaterialMovements(ctx context.Context, rawMaterialID string) ([]RawMaterialMovement, error) {
	query := url.Values{}
	query.Set("rawMaterialId", rawMaterialID)

	var out []RawMaterialMovement
	if err := c.get(ctx, "/raw-material-movements", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}
