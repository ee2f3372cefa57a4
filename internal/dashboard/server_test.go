package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Simi445/DMS-K8S/internal/alerts"
	"github.com/Simi445/DMS-K8S/internal/api"
	"github.com/Simi445/DMS-K8S/internal/consumption"
	"github.com/Simi445/DMS-K8S/internal/store"
)

func TestStart_NilStore(t *testing.T) {
	err := Start(context.Background(), StartOpts{})
	if err == nil {
		t.Fatal("expected error for nil store")
	}
	if !strings.Contains(err.Error(), "store is required") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "store is required")
	}
}

func TestEmbeddedAssets(t *testing.T) {
	data, err := assetsFS.ReadFile("assets/style.css")
	if err != nil {
		t.Fatalf("style.css not embedded: %v", err)
	}
	if len(data) == 0 {
		t.Error("style.css is empty")
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	data, err := templatesFS.ReadFile("templates/layout.html")
	if err != nil {
		t.Fatalf("layout.html not embedded: %v", err)
	}
	if !strings.Contains(string(data), "DMS") {
		t.Error("layout.html does not contain 'DMS'")
	}
}

// stubSamples serves canned consumption samples.
type stubSamples struct {
	samples []api.Sample
	err     error
}

func (s *stubSamples) Consumptions(ctx context.Context, userID int64, date time.Time) ([]api.Sample, error) {
	return s.samples, s.err
}

func newTestServer(t *testing.T, samples SampleSource) (*store.Store, string) {
	t.Helper()
	st, err := store.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())
	tmpl, err := parseTemplates()
	if err != nil {
		t.Fatalf("parseTemplates: %v", err)
	}
	router.SetHTMLTemplate(tmpl)
	registerRoutes(router, st, samples)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return st, srv.URL
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestPagesReturn200(t *testing.T) {
	_, baseURL := newTestServer(t, nil)
	for _, path := range []string{"/", "/devices", "/users", "/alerts", "/chats", "/consumption", "/static/style.css", "/metrics"} {
		status, _ := get(t, baseURL+path)
		if status != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, status)
		}
	}
}

func TestDevicesPageRendersSnapshot(t *testing.T) {
	st, baseURL := newTestServer(t, nil)

	owner := int64(10)
	if err := st.CacheUsers([]api.User{{AuthID: 1, UserID: owner, Username: "ana"}}); err != nil {
		t.Fatalf("CacheUsers: %v", err)
	}
	err := st.CacheDevices([]api.Device{
		{DeviceID: 3, UserID: &owner, Name: "heater", Status: "active", MaxConsumption: 100},
		{DeviceID: 4, Name: "pump", Status: "inactive", MaxConsumption: 50},
	})
	if err != nil {
		t.Fatalf("CacheDevices: %v", err)
	}

	_, body := get(t, baseURL+"/devices")
	if !strings.Contains(body, "heater") || !strings.Contains(body, "ana") {
		t.Errorf("devices page missing rows:\n%s", body)
	}
	if !strings.Contains(body, "unassigned") {
		t.Error("devices page missing unassigned owner")
	}
}

func TestChatDetailRendersTranscript(t *testing.T) {
	st, baseURL := newTestServer(t, nil)

	err := st.RecordMessage("sess-1", api.ChatMessage{
		ID: "m1", SenderID: "user-7", Content: "my heater is loud",
		MessageType: api.MessageTypeUser,
		Timestamp:   api.Timestamp{Time: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}

	_, body := get(t, baseURL+"/chats/sess-1")
	if !strings.Contains(body, "my heater is loud") {
		t.Errorf("transcript missing line:\n%s", body)
	}
}

func TestAlertsPageRendersHistory(t *testing.T) {
	st, baseURL := newTestServer(t, nil)

	err := st.RecordAlert(alerts.Alert{
		UserID: "7", DeviceID: 3, Consumption: 120.5, Threshold: 100,
		Message:   "ALERT: Device 3 has exceeded its consumption limit!",
		Timestamp: api.Timestamp{Time: time.Now()},
	})
	if err != nil {
		t.Fatalf("RecordAlert: %v", err)
	}

	_, body := get(t, baseURL+"/alerts")
	if !strings.Contains(body, "exceeded its consumption limit") {
		t.Errorf("alerts page missing record:\n%s", body)
	}
}

func TestConsumptionPageRendersChart(t *testing.T) {
	samples := &stubSamples{samples: []api.Sample{
		{Consumption: 10, Timestamp: api.Timestamp{Time: time.Date(2024, 3, 1, 5, 15, 0, 0, time.UTC)}},
		{Consumption: 20, Timestamp: api.Timestamp{Time: time.Date(2024, 3, 1, 5, 45, 0, 0, time.UTC)}},
	}}
	_, baseURL := newTestServer(t, samples)

	_, body := get(t, baseURL+"/consumption?user=10&date=2024-03-01&style=bar")
	if !strings.Contains(body, "<svg") {
		t.Errorf("consumption page missing chart:\n%s", body)
	}
	if !strings.Contains(body, "15.00 kWh") {
		t.Errorf("chart missing averaged bucket:\n%s", body)
	}
}

func TestConsumptionPageSurfacesFetchError(t *testing.T) {
	samples := &stubSamples{err: fmt.Errorf("portal unreachable")}
	_, baseURL := newTestServer(t, samples)

	status, body := get(t, baseURL+"/consumption?user=10")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "portal unreachable") {
		t.Errorf("page missing fetch error:\n%s", body)
	}
}

func TestChartSVGStyles(t *testing.T) {
	var buckets [24]float64
	buckets[5] = 15

	bar := string(chartSVG(buckets, consumption.StyleBar))
	if !strings.Contains(bar, "<rect") {
		t.Errorf("bar chart has no rects:\n%s", bar)
	}
	line := string(chartSVG(buckets, consumption.StyleLine))
	if !strings.Contains(line, "<polyline") {
		t.Errorf("line chart has no polyline:\n%s", line)
	}
}
