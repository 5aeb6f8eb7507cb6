package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voltworks/estimator/api"
	"github.com/voltworks/estimator/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler := api.NewHandler(memory.New(), zap.NewNop(), api.NewMetrics())
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func createProject(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/projects", map[string]any{
		"name": "Line 4 Rebuild", "client": "Acme Foods",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func createEstimate(t *testing.T, srv *httptest.Server, projectID string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/projects/"+projectID+"/estimates", map[string]any{
		"name": "Main Panel",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func createPart(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/parts", map[string]any{
		"part_number": "1489-M2C100", "manufacturer": "Allen-Bradley",
		"description": "Circuit breaker, 10A", "category": "Breakers",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

// =============================================================================
// PROJECTS AND ESTIMATES
// =============================================================================

func TestProjectLifecycle(t *testing.T) {
	srv := newServer(t)

	id := createProject(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Line 4 Rebuild", body["name"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/projects/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateProject_MissingNameRejected(t *testing.T) {
	srv := newServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/projects", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestCreateEstimate_SnapshotsDefaultRates(t *testing.T) {
	// GIVEN: A project
	// WHEN: Creating an estimate without explicit rates
	// THEN: The shop default rates are snapshotted onto it

	srv := newServer(t)
	projectID := createProject(t, srv)
	estimateID := createEstimate(t, srv, projectID)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/estimates/"+estimateID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rates := body["rates"].(map[string]any)
	assert.Equal(t, "145", rates["engineering"])
	assert.Equal(t, "125", rates["panel_shop"])
}

// =============================================================================
// PRICING AND TOTALS
// =============================================================================

func TestPriceUpdate_AndRetroactiveTotals(t *testing.T) {
	// GIVEN: An assembly with 3 of a $10 part
	// WHEN: The part's price moves to $12
	// THEN: The assembly totals endpoint reflects $36 with no line edits

	srv := newServer(t)
	projectID := createProject(t, srv)
	estimateID := createEstimate(t, srv, projectID)
	partID := createPart(t, srv)

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/parts/"+partID+"/price", map[string]any{
		"price": "10.00", "reason": "initial", "source": "test",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, asm := doJSON(t, http.MethodPost, srv.URL+"/api/estimates/"+estimateID+"/assemblies", map[string]any{
		"name": "Enclosure",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assemblyID := asm["id"].(string)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/assemblies/"+assemblyID+"/parts", map[string]any{
		"part_id": partID, "quantity": "3",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, totals := doJSON(t, http.MethodGet, srv.URL+"/api/assemblies/"+assemblyID+"/totals", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "30.00", totals["material_total"])

	resp, update := doJSON(t, http.MethodPut, srv.URL+"/api/parts/"+partID+"/price", map[string]any{
		"price": "12.00", "reason": "vendor increase", "source": "test",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, update["changed"])

	resp, totals = doJSON(t, http.MethodGet, srv.URL+"/api/assemblies/"+assemblyID+"/totals", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "36.00", totals["material_total"])
}

func TestPriceUpdate_SubCentReportsUnchanged(t *testing.T) {
	srv := newServer(t)
	partID := createPart(t, srv)

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/parts/"+partID+"/price", map[string]any{
		"price": "10.00",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, update := doJSON(t, http.MethodPut, srv.URL+"/api/parts/"+partID+"/price", map[string]any{
		"price": "10.004",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, update["changed"])
}

func TestAddAssemblyPart_NegativeQuantityRejected(t *testing.T) {
	srv := newServer(t)
	projectID := createProject(t, srv)
	estimateID := createEstimate(t, srv, projectID)
	partID := createPart(t, srv)

	resp, asm := doJSON(t, http.MethodPost, srv.URL+"/api/estimates/"+estimateID+"/assemblies", map[string]any{
		"name": "Enclosure",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/assemblies/"+asm["id"].(string)+"/parts", map[string]any{
		"part_id": partID, "quantity": "-2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// PART LOOKUP
// =============================================================================

func TestLookupPart_ByPartNumber(t *testing.T) {
	srv := newServer(t)
	partID := createPart(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/parts/lookup?identifier=1489-M2C100", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, partID, body["id"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/parts/lookup?identifier=unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// MOTORS
// =============================================================================

func TestMotorEdit_BumpsRevisionAndRecordsHistory(t *testing.T) {
	// GIVEN: A 10HP motor at revision 1.0
	// WHEN: Editing to 15HP with no explicit class
	// THEN: The detector suggests major, the motor lands at 2.0, and the
	//       revision history holds the 10HP snapshot

	srv := newServer(t)
	projectID := createProject(t, srv)

	resp, created := doJSON(t, http.MethodPost, srv.URL+"/api/projects/"+projectID+"/motors", map[string]any{
		"load_type": "motor", "name": "Conveyor 1", "hp": "10", "voltage": "460", "qty": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	motorID := created["id"].(string)
	assert.Equal(t, "1.0", created["revision"])

	resp, edited := doJSON(t, http.MethodPut, srv.URL+"/api/motors/"+motorID, map[string]any{
		"load_type": "motor", "name": "Conveyor 1", "hp": "15", "voltage": "460", "qty": 1,
		"changed_by": "jdoe", "change_description": "upsized drive train",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2.0", edited["revision"])
	assert.Equal(t, false, edited["no_changes"])

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/motors/"+motorID+"/revisions", nil)
	require.NoError(t, err)
	histResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer histResp.Body.Close()
	require.Equal(t, http.StatusOK, histResp.StatusCode)

	var snaps []map[string]any
	require.NoError(t, json.NewDecoder(histResp.Body).Decode(&snaps))
	require.Len(t, snaps, 1)
	assert.Equal(t, "1.0", snaps[0]["revision"])
}
