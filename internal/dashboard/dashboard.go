// Package dashboard provides real-time fraud monitoring and visualization
// for the risk platform. It serves a web-based overview of scored
// transactions with WebSocket streaming for live updates, plus an
// interactive analysis endpoint with per-feature attributions.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/explain"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/predict"
	"github.com/udhtaz/fintech-transaction-risk-intelligence-system/internal/storage"
)

// Stats is the live snapshot pushed to connected dashboard clients.
type Stats struct {
	Timestamp time.Time `json:"timestamp"`

	TotalPredictions int     `json:"totalPredictions"`
	FraudFlagged     int     `json:"fraudFlagged"`
	FraudRate        float64 `json:"fraudRate"`
	AvgRiskScore     float64 `json:"avgRiskScore"`

	BandCounts map[string]int `json:"bandCounts"`

	Recent []storage.PredictionRecord `json:"recent"`

	ModelVersion string `json:"modelVersion"`
	ModelLoaded  bool   `json:"modelLoaded"`
}

// AnalyzeResponse is the result of an interactive analysis: the scored
// transaction plus a local attribution of each feature's contribution.
type AnalyzeResponse struct {
	Status           string                 `json:"status"`
	Prediction       int                    `json:"prediction"`
	Probability      float64                `json:"probability"`
	Explanation      predict.Explanation    `json:"explanation"`
	Attributions     []explain.Contribution `json:"attributions"`
	AttributionNote  string                 `json:"attribution_note,omitempty"`
	ProcessingTimeMs float64                `json:"processing_time_ms"`
}

// Dashboard serves the monitoring UI and its data endpoints.
type Dashboard struct {
	engine *predict.Engine
	store  *storage.Store

	server           *http.Server
	upgrader         websocket.Upgrader
	clients          map[*websocket.Conn]bool
	clientsMu        sync.RWMutex
	broadcastChannel chan Stats
	stopChannel      chan struct{}
	isRunning        bool
	mu               sync.RWMutex
}

// New creates the dashboard on the given port. The store may be nil, in
// which case trend panels stay empty.
func New(engine *predict.Engine, store *storage.Store, port int) *Dashboard {
	d := &Dashboard{
		engine:           engine,
		store:            store,
		upgrader:         websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:          make(map[*websocket.Conn]bool),
		broadcastChannel: make(chan Stats, 100),
		stopChannel:      make(chan struct{}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", d.handleDashboard).Methods("GET")
	r.HandleFunc("/api/stats", d.handleStatsAPI).Methods("GET")
	r.HandleFunc("/api/analyze", d.handleAnalyze).Methods("POST")
	r.HandleFunc("/ws", d.handleWebSocket).Methods("GET")

	d.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return d
}

// Handler returns the underlying HTTP handler, for tests.
func (d *Dashboard) Handler() http.Handler { return d.server.Handler }

// Start starts the dashboard server and the stats broadcast loop.
func (d *Dashboard) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return fmt.Errorf("dashboard is already running")
	}

	go d.statsCollector()
	go d.clientBroadcaster()

	go func() {
		log.Info().
			Str("address", d.server.Addr).
			Msg("starting fraud monitoring dashboard")

		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("dashboard server failed")
		}
	}()

	d.isRunning = true
	return nil
}

// Stop stops the dashboard server.
func (d *Dashboard) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		return nil
	}

	close(d.stopChannel)

	d.clientsMu.Lock()
	for client := range d.clients {
		client.Close()
	}
	d.clients = make(map[*websocket.Conn]bool)
	d.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown dashboard server")
		return err
	}

	d.isRunning = false
	log.Info().Msg("dashboard stopped")
	return nil
}

// statsCollector refreshes the stats snapshot every two seconds and
// queues it for broadcast.
func (d *Dashboard) statsCollector() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := d.collectStats()
			select {
			case d.broadcastChannel <- stats:
			default:
				// Channel full, skip this update
			}
		case <-d.stopChannel:
			return
		}
	}
}

// clientBroadcaster pushes queued snapshots to all connected clients.
func (d *Dashboard) clientBroadcaster() {
	for {
		select {
		case stats := <-d.broadcastChannel:
			d.broadcastToClients(stats)
		case <-d.stopChannel:
			return
		}
	}
}

// collectStats builds the live snapshot from the prediction history.
func (d *Dashboard) collectStats() Stats {
	stats := Stats{
		Timestamp: time.Now(),
		BandCounts: map[string]int{
			predict.BandLow:    0,
			predict.BandMedium: 0,
			predict.BandHigh:   0,
		},
	}

	if md, err := d.engine.Metadata(); err == nil {
		stats.ModelLoaded = true
		stats.ModelVersion = md.Version()
	}

	if d.store == nil {
		return stats
	}

	recent, err := d.store.GetRecentPredictions(200)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read prediction history")
		return stats
	}

	var scoreSum float64
	for _, rec := range recent {
		stats.TotalPredictions++
		scoreSum += rec.RiskScore
		if rec.IsFraudulent {
			stats.FraudFlagged++
		}
		stats.BandCounts[rec.RiskLevel]++
	}
	if stats.TotalPredictions > 0 {
		stats.AvgRiskScore = scoreSum / float64(stats.TotalPredictions)
		stats.FraudRate = float64(stats.FraudFlagged) / float64(stats.TotalPredictions)
	}

	if len(recent) > 20 {
		recent = recent[:20]
	}
	stats.Recent = recent

	return stats
}

func (d *Dashboard) broadcastToClients(stats Stats) {
	data, err := json.Marshal(stats)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal stats for broadcast")
		return
	}

	d.clientsMu.Lock()
	defer d.clientsMu.Unlock()

	for client := range d.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().Err(err).Msg("failed to send message to WebSocket client")
			client.Close()
			delete(d.clients, client)
		}
	}
}

// handleStatsAPI serves the current stats snapshot as JSON.
func (d *Dashboard) handleStatsAPI(w http.ResponseWriter, _ *http.Request) {
	stats := d.collectStats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleAnalyze scores one transaction and attaches a per-feature local
// attribution. Attribution failure never fails the analysis; the panel
// falls back to zero contributions with a note.
func (d *Dashboard) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, `{"status":"error","detail":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if err := predict.Validate(raw); err != nil {
		http.Error(w, fmt.Sprintf(`{"status":"error","detail":%q}`, err.Error()), http.StatusBadRequest)
		return
	}

	results, err := d.engine.Predict(raw)
	if err != nil {
		status := http.StatusInternalServerError
		if _, ok := err.(*predict.ConfigError); ok {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, fmt.Sprintf(`{"status":"error","detail":%q}`, err.Error()), status)
		return
	}
	res := results[0]

	resp := AnalyzeResponse{
		Status:           "success",
		Prediction:       res.Prediction,
		Probability:      res.Probability,
		Explanation:      res.Explanation,
		ProcessingTimeMs: res.ProcessingTimeMs,
	}

	scorer, scorerErr := d.engine.Scorer()
	md, _ := d.engine.Metadata()
	if scorerErr == nil {
		row := res.FeatureRow
		attributions, degraded := explain.Attribute(scorer, md, row[:])
		resp.Attributions = attributions
		if degraded {
			resp.AttributionNote = "attribution unavailable for this model, showing zero contributions"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleWebSocket handles WebSocket connections for real-time updates.
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	d.clientsMu.Lock()
	d.clients[conn] = true
	d.clientsMu.Unlock()

	// Send initial snapshot
	stats := d.collectStats()
	if data, err := json.Marshal(stats); err == nil {
		conn.WriteMessage(websocket.TextMessage, data)
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	d.clientsMu.Lock()
	delete(d.clients, conn)
	d.clientsMu.Unlock()
}

// handleDashboard serves the main dashboard HTML page.
func (d *Dashboard) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	t, err := template.New("dashboard").Parse(dashboardHTML)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	t.Execute(w, nil)
}
