package smartset

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/marcinmaslon/wolf-comm/internal/core"
)

// guiDocument repeats the pump parameter under two menus and hides one
// descriptor in a nested submenu.
const guiDocument = `{
	"MenuItems": [
		{
			"Name": "Heizung",
			"TabViews": [
				{
					"TabName": "Anzeige",
					"BundleId": 1000,
					"ParameterDescriptors": [
						{"ValueId": 1, "ParameterId": 11, "Name": "Vorlauftemperatur", "Unit": "°C", "IsReadOnly": true},
						{"ValueId": 2, "ParameterId": 12, "Name": "Pumpe", "Unit": "%"}
					]
				}
			],
			"SubMenuEntries": [
				{
					"Name": "Experte",
					"TabViews": [
						{
							"TabName": "Detail",
							"BundleId": 2000,
							"ParameterDescriptors": [
								{"ValueId": 2, "ParameterId": 12, "Name": "Pumpe", "Unit": "%"},
								{"ValueId": 3, "ParameterId": 13, "Name": "Betriebsart", "ListItems": [
									{"Value": "0", "DisplayText": "Aus"},
									{"Value": "1", "DisplayText": "Automatik"}
								]}
							]
						}
					]
				}
			]
		}
	]
}`

func catalogClient(t *testing.T, opts ...Option) (*Client, *atomic.Int32) {
	t.Helper()
	portal := newPortalStub()
	var guiFetches atomic.Int32
	portal.handle("GET "+guiDescriptionRoute, func(w http.ResponseWriter, r *http.Request) {
		guiFetches.Add(1)
		if r.URL.Query().Get("GatewayId") == "" || r.URL.Query().Get("SystemId") == "" {
			http.Error(w, "missing ids", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, guiDocument)
	})
	c, _ := newTestClient(t, portal, opts...)
	return c, &guiFetches
}

var testSystem = core.System{ID: 42, GatewayID: 7, Name: "Haus"}

func valueIDs(params []core.Parameter) []int64 {
	ids := make([]int64, len(params))
	for i, p := range params {
		ids[i] = p.ValueID
	}
	return ids
}

func TestFetchParameters_GuidedDedupes(t *testing.T) {
	c, _ := catalogClient(t)

	params, err := c.FetchParameters(context.Background(), testSystem)
	if err != nil {
		t.Fatalf("FetchParameters() error = %v", err)
	}

	if diff := cmp.Diff([]int64{1, 2, 3}, valueIDs(params)); diff != "" {
		t.Errorf("catalog ids mismatch (-want +got):\n%s", diff)
	}

	byID := make(map[int64]core.Parameter)
	for _, p := range params {
		byID[p.ValueID] = p
	}
	if got := byID[1]; got.Unit != core.UnitTemperature || !got.ReadOnly || got.Parent != "Heizung" || got.BundleID != 1000 {
		t.Errorf("parameter 1 = %+v, want read-only temperature under Heizung bundle 1000", got)
	}
	if got := byID[3]; got.Unit != core.UnitList || got.ListItems["1"] != "Automatik" {
		t.Errorf("parameter 3 = %+v, want list parameter with items", got)
	}
}

func TestFetchParameters_ExpertConvergesOnSameSet(t *testing.T) {
	guided, _ := catalogClient(t)
	expert, _ := catalogClient(t, WithExpertMode(true))

	guidedParams, err := guided.FetchParameters(context.Background(), testSystem)
	if err != nil {
		t.Fatalf("guided FetchParameters() error = %v", err)
	}
	expertParams, err := expert.FetchParameters(context.Background(), testSystem)
	if err != nil {
		t.Fatalf("expert FetchParameters() error = %v", err)
	}

	// expert traversal order depends on document map iteration, so compare
	// the sets
	guidedIDs := valueIDs(guidedParams)
	expertIDs := valueIDs(expertParams)
	sort.Slice(guidedIDs, func(i, j int) bool { return guidedIDs[i] < guidedIDs[j] })
	sort.Slice(expertIDs, func(i, j int) bool { return expertIDs[i] < expertIDs[j] })
	if diff := cmp.Diff(guidedIDs, expertIDs); diff != "" {
		t.Errorf("expert mode found a different parameter set (-guided +expert):\n%s", diff)
	}
}

func TestFetchParameters_CachedInMemory(t *testing.T) {
	c, guiFetches := catalogClient(t)

	if _, err := c.FetchParameters(context.Background(), testSystem); err != nil {
		t.Fatalf("FetchParameters() error = %v", err)
	}
	if _, err := c.FetchParameters(context.Background(), testSystem); err != nil {
		t.Fatalf("second FetchParameters() error = %v", err)
	}

	if got := guiFetches.Load(); got != 1 {
		t.Errorf("gui description fetched %d times, want 1", got)
	}
}

func TestFetchParameters_SystemContextCacheSkipsDiscovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.json")

	first, firstFetches := catalogClient(t, WithSystemContextCache(path))
	params, err := first.FetchParameters(context.Background(), testSystem)
	if err != nil {
		t.Fatalf("FetchParameters() error = %v", err)
	}
	if got := firstFetches.Load(); got != 1 {
		t.Fatalf("gui description fetched %d times, want 1", got)
	}

	// a fresh client, as after a restart, serves both the catalog and the
	// system list from disk without touching the portal
	second, secondFetches := catalogClient(t, WithSystemContextCache(path))
	restored, err := second.FetchParameters(context.Background(), testSystem)
	if err != nil {
		t.Fatalf("FetchParameters() after restart error = %v", err)
	}
	if got := secondFetches.Load(); got != 0 {
		t.Errorf("gui description fetched %d times after restart, want 0", got)
	}
	if diff := cmp.Diff(params, restored); diff != "" {
		t.Errorf("restored catalog mismatch (-fetched +restored):\n%s", diff)
	}

	systems, err := second.FetchSystemList(context.Background())
	if err != nil {
		t.Fatalf("FetchSystemList() after restart error = %v", err)
	}
	if len(systems) != 1 || systems[0] != testSystem {
		t.Errorf("FetchSystemList() = %+v, want [%+v]", systems, testSystem)
	}
}

func TestDedupeParameters(t *testing.T) {
	params := []core.Parameter{
		{ValueID: 1, Name: "A", BundleID: 1},
		{ValueID: 1, Name: "A", BundleID: 1},
		{ValueID: 2, Name: "B", BundleID: 1},
		{ValueID: 1, Name: "Other", BundleID: 1}, // same id, different name: kept
	}

	got := dedupeParameters(params)
	if len(got) != 3 {
		t.Fatalf("dedupeParameters() kept %d entries, want 3", len(got))
	}
	if got[0].ValueID != 1 || got[1].ValueID != 2 || got[2].Name != "Other" {
		t.Errorf("dedupeParameters() order changed: %+v", got)
	}
}
