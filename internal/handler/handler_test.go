package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openauction/marketsim/internal/domain"
	"github.com/openauction/marketsim/internal/engine"
	"github.com/openauction/marketsim/internal/service"
	"github.com/openauction/marketsim/internal/store"
)

func newTestServer() (*httptest.Server, *service.Simulation) {
	x := engine.NewExchange(10000)
	x.Register(engine.ClientFunc(func(x *engine.Exchange) {
		_, _ = x.SubmitOrder(domain.NewOrder(domain.SideBuy, 100))
	}))
	x.Register(engine.ClientFunc(func(x *engine.Exchange) {
		_, _ = x.SubmitOrder(domain.NewOrder(domain.SideSell, 100))
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sim := service.NewSimulation(x, store.NewTradeLog(), logger)
	return httptest.NewServer(NewRouter(sim, logger)), sim
}

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decoding %s response: %v", url, err)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer()
	defer srv.Close()

	var body map[string]string
	getJSON(t, srv.URL+"/healthz", http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestGetPrice_OpeningState(t *testing.T) {
	srv, _ := newTestServer()
	defer srv.Close()

	var body struct {
		Bid        float64 `json:"bid"`
		Offer      float64 `json:"offer"`
		LastPrice  float64 `json:"last_price"`
		LastVolume *int64  `json:"last_volume"`
	}
	getJSON(t, srv.URL+"/price", http.StatusOK, &body)

	if body.Bid != 100.0 || body.Offer != 100.0 || body.LastPrice != 100.0 {
		t.Errorf("price view = %+v, want all fields 100.0", body)
	}
	if body.LastVolume != nil {
		t.Errorf("last_volume = %v, want null", *body.LastVolume)
	}
}

func TestGetTrades_AfterRound(t *testing.T) {
	srv, sim := newTestServer()
	defer srv.Close()

	sim.RunRound()

	var body struct {
		Trades []struct {
			Price    float64 `json:"price"`
			Quantity int64   `json:"quantity"`
		} `json:"trades"`
		Count int `json:"count"`
	}
	getJSON(t, srv.URL+"/trades", http.StatusOK, &body)

	if body.Count != 1 || len(body.Trades) != 1 {
		t.Fatalf("count = %d with %d trades, want 1", body.Count, len(body.Trades))
	}
	if body.Trades[0].Price != 100.0 || body.Trades[0].Quantity != 100 {
		t.Errorf("trade = %+v, want price 100.0 quantity 100", body.Trades[0])
	}
}

func TestGetTrades_InvalidLimit(t *testing.T) {
	srv, _ := newTestServer()
	defer srv.Close()

	getJSON(t, srv.URL+"/trades?limit=abc", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/trades?limit=0", http.StatusBadRequest, nil)
}

func TestGetBook_DepthAndSpread(t *testing.T) {
	srv, sim := newTestServer()
	defer srv.Close()

	getJSON(t, srv.URL+"/book?depth=abc", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/book?depth=51", http.StatusBadRequest, nil)

	sim.RunRound() // leaves an empty book: the pair crosses

	var body struct {
		Bids          []any    `json:"bids"`
		Asks          []any    `json:"asks"`
		Spread        *float64 `json:"spread"`
		RestingOrders int      `json:"resting_orders"`
	}
	getJSON(t, srv.URL+"/book", http.StatusOK, &body)

	if len(body.Bids) != 0 || len(body.Asks) != 0 {
		t.Errorf("expected empty depth, got %d bids / %d asks", len(body.Bids), len(body.Asks))
	}
	if body.Spread != nil {
		t.Errorf("spread = %v, want null", *body.Spread)
	}
	if body.RestingOrders != 0 {
		t.Errorf("resting_orders = %d, want 0", body.RestingOrders)
	}
}

func TestGetStats(t *testing.T) {
	srv, sim := newTestServer()
	defer srv.Close()

	sim.RunRound()
	sim.RunRound()

	var body struct {
		Rounds        int64 `json:"rounds"`
		Trades        int   `json:"trades"`
		RestingOrders int   `json:"resting_orders"`
	}
	getJSON(t, srv.URL+"/stats", http.StatusOK, &body)

	if body.Rounds != 2 || body.Trades != 2 {
		t.Errorf("stats = %+v, want 2 rounds and 2 trades", body)
	}
}
