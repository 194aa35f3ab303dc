package api

import (
	"context"
	"net/url"
	"strconv"
)

type ProductionOrderStatus string

const (
	OrderPlanned    ProductionOrderStatus = "PLANNED"
	OrderInProgress ProductionOrderStatus = "IN_PROGRESS"
	OrderFinished   ProductionOrderStatus = "FINISHED"
	OrderCanceled   ProductionOrderStatus = "CANCELED"
)

type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "LOW"
	PriorityMedium PriorityLevel = "MEDIUM"
	PriorityHigh   PriorityLevel = "HIGH"
	PriorityUrgent PriorityLevel = "URGENT"
)

// ProductionProduct is a manufacturable good.
type ProductionProduct struct {
	ID        string   `json:"id"`
	TenantID  string   `json:"tenantId"`
	CompanyID string   `json:"companyId"`
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	UnitType  UnitType `json:"unitType"`
	UnitCost  *float64 `json:"unitCost,omitempty"`
	IsActive  bool     `json:"isActive"`
}

// ProductionOrder plans a quantity of a product.
type ProductionOrder struct {
	ID               string                `json:"id"`
	TenantID         string                `json:"tenantId"`
	CompanyID        string                `json:"companyId"`
	Code             string                `json:"code"`
	ProductID        string                `json:"productId"`
	ProductName      *string               `json:"productName,omitempty"`
	QuantityPlanned  float64               `json:"quantityPlanned"`
	QuantityProduced float64               `json:"quantityProduced"`
	Status           ProductionOrderStatus `json:"status"`
	Priority         PriorityLevel         `json:"priority"`
	StartDate        *string               `json:"startDate,omitempty"`
	EndDate          *string               `json:"endDate,omitempty"`
	Deadline         *string               `json:"deadline,omitempty"`
	CostTotal        float64               `json:"costTotal"`
	Notes            *string               `json:"notes,omitempty"`
	Version          int                   `json:"version"`
	CanceledReason   *string               `json:"canceledReason,omitempty"`
}

// ProductionStep is a reusable stage of a manufacturing process.
type ProductionStep struct {
	ID               string  `json:"id"`
	TenantID         string  `json:"tenantId"`
	CompanyID        string  `json:"companyId"`
	Name             string  `json:"name"`
	Description      *string `json:"description,omitempty"`
	Sequence         int     `json:"sequence"`
	EstimatedTime    float64 `json:"estimatedTime"`
	CostCenterID     *string `json:"costCenterId,omitempty"`
	IsOutsourced     bool    `json:"isOutsourced"`
	RequiresApproval bool    `json:"requiresApproval"`
	IsActive         bool    `json:"isActive"`
}

// ProductionExecution records work performed against an order.
type ProductionExecution struct {
	ID               string   `json:"id"`
	OrderID          string   `json:"productionOrderId"`
	CompanyID        string   `json:"companyId"`
	ExecutionDate    string   `json:"executionDate"`
	QuantityProduced float64  `json:"quantityProduced"`
	QuantityScrapped *float64 `json:"quantityScrapped,omitempty"`
	OperatorID       *string  `json:"operatorId,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

// ProductionClosure finalizes an order and fixes its total cost.
type ProductionClosure struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"productionOrderId"`
	CompanyID   string  `json:"companyId"`
	ClosureDate string  `json:"closureDate"`
	TotalCost   float64 `json:"totalCost"`
	Notes       *string `json:"notes,omitempty"`
}

// ProductionCost is one cost entry attached to an order.
type ProductionCost struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"productionOrderId"`
	CompanyID string  `json:"companyId"`
	CostType  string  `json:"costType"` // MATERIAL, LABOR, SERVICE, OVERHEAD
	Quantity  float64 `json:"quantity"`
	UnitCost  float64 `json:"unitCost"`
	TotalCost float64 `json:"totalCost"`
	Notes     *string `json:"notes,omitempty"`
}

func (c *Client) ListProductionProducts(ctx context.Context, companyID string) ([]ProductionProduct, error) {
	query := url.Values{}
	query.Set("companyId", companyID)

	var out []ProductionProduct
	if err := c.get(ctx, "/production-products", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProductionOrders filters by status when status is non-empty.
func (c *Client) ListProductionOrders(ctx context.Context, companyID string, status ProductionOrderStatus) ([]ProductionOrder, error) {
	query := url.Values{}
	query.Set("companyId", companyID)
	if status != "" {
		query.Set("status", string(status))
	}

	var out []ProductionOrder
	if err := c.get(ctx, "/production-orders", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProductionOrder(ctx context.Context, id string) (*ProductionOrder, error) {
	var out ProductionOrder
	if err := c.get(ctx, "/production-orders/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProductionOrder(ctx context.Context, in ProductionOrder) (*ProductionOrder, error) {
	var out ProductionOrder
	if err := c.post(ctx, "/production-orders", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProductionOrder(ctx context.Context, id string, in ProductionOrder) (*ProductionOrder, error) {
	var out ProductionOrder
	if err := c.put(ctx, "/production-orders/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProductionOrder(ctx context.Context, id string) error {
	return c.del(ctx, "/production-orders/"+id)
}

func (c *Client) ListProductionSteps(ctx context.Context, companyID string, activeOnly bool) ([]ProductionStep, error) {
	query := url.Values{}
	query.Set("companyId", companyID)
	query.Set("activeOnly", strconv.FormatBool(activeOnly))

	var out []ProductionStep
	if err := c.get(ctx, "/production-steps", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProductionStep(ctx context.Context, id string) (*ProductionStep, error) {
	var out ProductionStep
	if err := c.get(ctx, "/production-steps/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProductionStep(ctx context.Context, in ProductionStep) (*ProductionStep, error) {
	var out ProductionStep
	if err := c.post(ctx, "/production-steps", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProductionStep(ctx context.Context, id string, in ProductionStep) (*ProductionStep, error) {
	var out ProductionStep
	if err := c.put(ctx, "/production-steps/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProductionStep(ctx context.Context, id string) error {
	return c.del(ctx, "/production-steps/"+id)
}

// ActivateProductionStep flips a step back into active use.
func (c *Client) ActivateProductionStep(ctx context.Context, id string) (*ProductionStep, error) {
	return c.setProductionStepActive(ctx, id, true)
}

// DeactivateProductionStep retires a step without deleting it.
func (c *Client) DeactivateProductionStep(ctx context.Context, id string) (*ProductionStep, error) {
	return c.setProductionStepActive(ctx, id, false)
}

// setProductionStepActive issues the partial update the backend expects
// for activation toggles: a body carrying only isActive.
func (c *Client) setProductionStepActive(ctx context.Context, id string, active bool) (*ProductionStep, error) {
	var out ProductionStep
	if err := c.put(ctx, "/production-steps/"+id, map[string]bool{"isActive": active}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProductionExecution(ctx context.Context, in ProductionExecution) (*ProductionExecution, error) {
	var out ProductionExecution
	if err := c.post(ctx, "/production-executions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProductionExecutions(ctx context.Context, orderID string) ([]ProductionExecution, error) {
	query := url.Values{}
	query.Set("productionOrderId", orderID)

	var out []ProductionExecution
	if err := c.get(ctx, "/production-executions", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProductionClosure(ctx context.Context, in ProductionClosure) (*ProductionClosure, error) {
	var out ProductionClosure
	if err := c.post(ctx, "/production-closures", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProductionCosts(ctx context.Context, orderID string) ([]ProductionCost, error) {
	query := url.Values{}
	query.Set("productionOrderId", orderID)

	var out []ProductionCost
	if err := c.get(ctx, "/production-costs", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProductionCost(ctx context.Context, in ProductionCost) (*ProductionCost, error) {
	var out ProductionCost
	if err := c.post(ctx, "/production-costs", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
