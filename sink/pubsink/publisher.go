// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pubsink

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/widebandsweep/sweepcore/sink"
)

// message is the JSON envelope broadcast to subscribers for every
// record the pipeline emits. Kind identifies which sink.Sink method
// produced it.
type message struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	HzLow     uint64    `json:"hz_low,omitempty"`
	HzHigh    uint64    `json:"hz_high,omitempty"`
	BinWidth  float64   `json:"bin_width,omitempty"`
	Powers    []float32 `json:"powers,omitempty"`
	NumIFFT   int       `json:"num_ifft_samples,omitempty"`
}

// Publisher is a network-publisher sink.Sink that fans each record out
// to subscribed websocket clients as JSON.
type Publisher struct {
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*websocket.Conn]struct{}
	sessionID uuid.UUID

	sweepsTotal prometheus.Counter
	bytesTotal  prometheus.Counter
	subscribers prometheus.Gauge
}

// New creates a Publisher and registers its metrics with reg. A nil
// reg registers against prometheus's default registerer.
func New(reg prometheus.Registerer) *Publisher {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Publisher{
		clients:   make(map[*websocket.Conn]struct{}),
		sessionID: uuid.New(),
		sweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sweepcore",
			Name:      "sweeps_published_total",
			Help:      "Number of completed sweeps published to subscribers.",
		}),
		bytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sweepcore",
			Name:      "publish_bytes_total",
			Help:      "Total bytes published to subscribers.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sweepcore",
			Name:      "publish_subscribers",
			Help:      "Number of currently connected subscribers.",
		}),
	}
	reg.MustRegister(p.sweepsTotal, p.bytesTotal, p.subscribers)
	return p
}

// NewSweep starts a new publishing session, tagging all subsequent
// records with a fresh session identifier, and increments the
// completed-sweeps counter. The sweep engine calls this at each sweep
// boundary.
func (p *Publisher) NewSweep() {
	p.mu.Lock()
	p.sessionID = uuid.New()
	p.mu.Unlock()
	p.sweepsTotal.Inc()
}

// ServeWS upgrades r to a websocket connection and registers it as a
// subscriber until the connection is closed by the remote end.
func (p *Publisher) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.clients[conn] = struct{}{}
	p.mu.Unlock()
	p.subscribers.Inc()

	go func() {
		defer p.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

func (p *Publisher) removeClient(conn *websocket.Conn) {
	p.mu.Lock()
	delete(p.clients, conn)
	p.mu.Unlock()
	p.subscribers.Dec()
	conn.Close()
}

func (p *Publisher) broadcast(msg message) error {
	p.mu.Lock()
	msg.SessionID = p.sessionID.String()
	p.mu.Unlock()

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for conn := range p.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			go p.removeClient(conn)
			continue
		}
	}
	p.bytesTotal.Add(float64(len(payload)))
	return nil
}

// WriteText implements sink.Sink.
func (p *Publisher) WriteText(rec sink.TextRecord) error {
	powers := make([]float32, len(rec.Powers))
	for i, v := range rec.Powers {
		powers[i] = float32(v)
	}
	return p.broadcast(message{
		Kind:      "text",
		Timestamp: rec.Timestamp,
		HzLow:     rec.HzLow,
		HzHigh:    rec.HzHigh,
		BinWidth:  rec.BinWidth,
		Powers:    powers,
	})
}

// WriteBinary implements sink.Sink.
func (p *Publisher) WriteBinary(rec sink.BinaryRecord) error {
	return p.broadcast(message{
		Kind:   "binary",
		HzLow:  rec.HzLow,
		HzHigh: rec.HzHigh,
		Powers: rec.Powers,
	})
}

// WriteIFFT implements sink.Sink.
func (p *Publisher) WriteIFFT(samples []complex64) error {
	return p.broadcast(message{
		Kind:    "ifft",
		NumIFFT: len(samples),
	})
}
