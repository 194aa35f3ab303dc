package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prodflow/prodflow-go/api"
	"github.com/prodflow/prodflow-go/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestListProductionStepsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/production-steps", r.URL.Path)
		require.Equal(t, "company-1", r.URL.Query().Get("companyId"))
		require.Equal(t, "true", r.URL.Query().Get("activeOnly"))
		require.NoError(t, json.NewEncoder(w).Encode([]api.ProductionStep{
			{ID: "step-1", Name: "Cutting", Sequence: 1, EstimatedTime: 45, IsActive: true},
		}))
	}))
	defer srv.Close()

	client, _ := loggedInClient(t, srv.URL)

	steps, err := client.ListProductionSteps(context.Background(), "company-1", true)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	require.Equal(t, "Cutting", steps[0].Name)
}

func TestCreateProductionStepOptionalFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/production-steps", r.URL.Path)

		var in api.ProductionStep
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "Thermal treatment before machining", utils.Value(in.Description))
		require.Equal(t, "cc-7", utils.Value(in.CostCenterID))

		in.ID = "step-9"
		require.NoError(t, json.NewEncoder(w).Encode(in))
	}))
	defer srv.Close()

	client, _ := loggedInClient(t, srv.URL)

	created, err := client.CreateProductionStep(context.Background(), api.ProductionStep{
		CompanyID:        "company-1",
		Name:             "Annealing",
		Description:      utils.Ptr("Thermal treatment before machining"),
		Sequence:         3,
		EstimatedTime:    120,
		CostCenterID:     utils.Ptr("cc-7"),
		RequiresApproval: true,
		IsActive:         true,
	})
	require.NoError(t, err)
	require.Equal(t, "step-9", created.ID)
	require.Equal(t, "Thermal treatment before machining", utils.Value(created.Description))
}

func TestProductionStepActivationToggles(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/production-steps/step-1", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)

		require.NoError(t, json.NewEncoder(w).Encode(api.ProductionStep{
			ID: "step-1", IsActive: body["isActive"].(bool),
		}))
	}))
	defer srv.Close()

	client, _ := loggedInClient(t, srv.URL)

	step, err := client.DeactivateProductionStep(context.Background(), "step-1")
	require.NoError(t, err)
	require.False(t, step.IsActive)

	step, err = client.ActivateProductionStep(context.Background(), "step-1")
	require.NoError(t, err)
	require.True(t, step.IsActive)

	// The toggle is a partial update: the body carries only isActive.
	require.Equal(t, []map[string]any{{"isActive": false}, {"isActive": true}}, bodies)
}
