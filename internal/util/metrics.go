package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_created_total",
		Help: "Total number of products created",
	})

	StockReservedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_stock_reserved_units_total",
		Help: "Total units of stock reserved",
	})

	StockReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_stock_released_units_total",
		Help: "Total units of stock released back (compensation)",
	})

	StockReservationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_stock_reservations_failed_total",
		Help: "Total number of failed stock reservations",
	}, []string{"reason"})

	OrdersConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_confirmed_total",
		Help: "Total number of confirmed orders",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order placements",
	}, []string{"reason"})

	ReservationRollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_reservation_rollbacks_total",
		Help: "Total number of reservations rolled back during compensation",
	})

	PlaceOrderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orders_place_order_latency_seconds",
		Help:    "Latency of the order placement workflow",
		Buckets: prometheus.DefBuckets,
	})

	CacheSyncEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_sync_events_total",
		Help: "Total number of stock events applied to the availability cache",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
