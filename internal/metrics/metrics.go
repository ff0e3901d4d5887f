package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_connections_active",
			Help: "Currently connected websocket clients",
		},
	)

	// Room metrics
	RoomsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_rooms_active",
			Help: "Currently existing rooms",
		},
		[]string{"kind"}, // "public" or "private"
	)

	RoomsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rooms_created_total",
			Help: "Total rooms created",
		},
		[]string{"kind"},
	)

	RoomsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rooms_deleted_total",
			Help: "Total rooms deleted",
		},
		[]string{"kind", "cause"}, // cause: "request" or "sweep"
	)

	// Relay metrics
	MessagesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_relayed_total",
			Help: "Total payloads relayed to clients",
		},
		[]string{"kind"}, // "room", "random", "signal"
	)

	// Matchmaking metrics
	MatchesMade = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_matches_made_total",
			Help: "Total random chat pairs formed",
		},
		[]string{"with_video"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_match_queue_depth",
			Help: "Connections currently waiting for a random chat partner",
		},
	)
)
