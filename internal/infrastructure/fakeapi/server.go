// Package fakeapi serves an in-process stand-in for the quotation API, with canned quotes and
// failure injection, for tests and local runs of the CLI.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Route names accepted by FailNext and Calls
const (
	RouteAvailable = "available"
	RouteLast      = "last"
	RouteDaily     = "daily"
)

// Quote is one record in the upstream wire format
type Quote struct {
	Code       string `json:"code"`
	Codein     string `json:"codein"`
	Name       string `json:"name"`
	High       string `json:"high,omitempty"`
	Low        string `json:"low,omitempty"`
	VarBid     string `json:"varBid,omitempty"`
	PctChange  string `json:"pctChange,omitempty"`
	Bid        string `json:"bid"`
	Ask        string `json:"ask"`
	Timestamp  string `json:"timestamp"`
	CreateDate string `json:"create_date,omitempty"`
}

type failure struct {
	status int
	times  int
}

// Server is the stub quotation API
type Server struct {
	router *mux.Router

	mu        sync.Mutex
	available map[string]string
	last      map[string]Quote
	daily     map[string]map[string][]Quote
	failures  map[string]*failure
	calls     map[string]int
	headers   http.Header
}

// New creates an empty stub
func New() *Server {
	s := &Server{
		router:    mux.NewRouter(),
		available: map[string]string{},
		last:      map[string]Quote{},
		daily:     map[string]map[string][]Quote{},
		failures:  map[string]*failure{},
		calls:     map[string]int{},
	}
	s.RegisterRoutes(s.router)
	return s
}

// NewWithDefaults creates a stub seeded with USD-BRL, EUR-BRL and USD-BRLT
func NewWithDefaults() *Server {
	s := New()

	usd := Quote{
		Code: "USD", Codein: "BRL", Name: "Dólar Americano/Real Brasileiro",
		High: "5.1234", Low: "5.0432", VarBid: "0.0123", PctChange: "0.24",
		Bid: "5.0876", Ask: "5.0891", Timestamp: "1614024000", CreateDate: "2023-01-01 13:00:00",
	}
	eur := Quote{
		Code: "EUR", Codein: "BRL", Name: "Euro/Real Brasileiro",
		High: "6.1234", Low: "6.0432", VarBid: "0.0223", PctChange: "0.37",
		Bid: "6.0876", Ask: "6.0891", Timestamp: "1614024000", CreateDate: "2023-01-01 13:00:00",
	}
	tourism := Quote{
		Code: "USD", Codein: "BRLT", Name: "Dólar Americano/Real Brasileiro Turismo",
		Bid: "5.12", Ask: "5.31", Timestamp: "1614024000",
	}

	s.AddPair("USD-BRL", usd.Name, usd)
	s.AddPair("EUR-BRL", eur.Name, eur)
	s.AddPair("USD-BRLT", tourism.Name, tourism)

	historical := usd
	historical.CreateDate = "2022-06-21 13:00:00"
	s.AddHistory("USD-BRL", "20220621", historical)

	return s
}

// RegisterRoutes registers the upstream routes on router
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/json/available", s.handleAvailable).Methods(http.MethodGet)
	router.HandleFunc("/json/last/{pairs}", s.handleLast).Methods(http.MethodGet)
	router.HandleFunc("/json/daily/{pair}", s.handleDaily).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs the stub on a local listener; callers must Close it
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s)
}

// AddPair lists pair as available and sets its latest quote
func (s *Server) AddPair(pair, name string, quote Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.available[pair] = name
	s.last[strings.ReplaceAll(pair, "-", "")] = quote
}

// AddHistory appends quotes for pair on date (YYYYMMDD)
func (s *Server) AddHistory(pair, date string, quotes ...Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.daily[pair] == nil {
		s.daily[pair] = map[string][]Quote{}
	}
	s.daily[pair][date] = append(s.daily[pair][date], quotes...)
}

// FailNext makes the next times calls to route answer with status
func (s *Server) FailNext(route string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[route] = &failure{status: status, times: times}
}

// Calls returns how many requests route has received
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[route]
}

// LastHeaders returns the headers of the most recent request
func (s *Server) LastHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.headers.Clone()
}

// record counts the call and reports whether an injected failure was written
func (s *Server) record(route string, w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[route]++
	s.headers = r.Header.Clone()

	f, ok := s.failures[route]
	if !ok || f.times == 0 {
		return false
	}
	f.times--
	writeJSON(w, f.status, map[string]string{"status": http.StatusText(f.status)})
	return true
}

func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	if s.record(RouteAvailable, w, r) {
		return
	}

	s.mu.Lock()
	payload := make(map[string]string, len(s.available))
	for k, v := range s.available {
		payload[k] = v
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	if s.record(RouteLast, w, r) {
		return
	}

	pairs := strings.Split(mux.Vars(r)["pairs"], ",")

	s.mu.Lock()
	payload := make(map[string]Quote, len(pairs))
	for _, pair := range pairs {
		key := strings.ReplaceAll(pair, "-", "")
		if quote, ok := s.last[key]; ok {
			payload[key] = quote
		}
	}
	s.mu.Unlock()

	if len(payload) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"status":  "404",
			"code":    "CoinNotExists",
			"message": "moeda nao encontrada " + mux.Vars(r)["pairs"],
		})
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if s.record(RouteDaily, w, r) {
		return
	}

	pair := mux.Vars(r)["pair"]
	start := r.URL.Query().Get("start_date")

	s.mu.Lock()
	quotes := append([]Quote{}, s.daily[pair][start]...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, quotes)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
