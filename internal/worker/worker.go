package worker

import (
	"context"
	"encoding/json"

	"commerce-service/internal/broker"
	"commerce-service/internal/redisclient"
	"commerce-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CacheWorker keeps the Redis availability cache in step with stock events,
// so gateway reads stay warm across service instances.
type CacheWorker struct {
	consumer *broker.Consumer
	cache    *redisclient.Client
	logger   *zap.Logger
}

func NewCacheWorker(consumer *broker.Consumer, cache *redisclient.Client) *CacheWorker {
	return &CacheWorker{
		consumer: consumer,
		cache:    cache,
		logger:   util.GetLogger(),
	}
}

// Start consumes stock events until the context is cancelled.
func (w *CacheWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting cache sync worker")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker.
func (w *CacheWorker) Stop() error {
	w.logger.Info("Stopping cache sync worker")
	return w.consumer.Close()
}

func (w *CacheWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var base broker.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		// Unparseable payloads are dropped, not retried.
		w.logger.Error("Failed to unmarshal event envelope", zap.Error(err))
		return nil
	}

	switch base.EventType {
	case broker.EventTypeStockReserved:
		var event broker.StockReservedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			w.logger.Error("Failed to unmarshal StockReserved event", zap.Error(err))
			return nil
		}
		if err := w.cache.ApplyStockDelta(ctx, event.ProductID, -event.Quantity); err != nil {
			w.logger.Error("Failed to apply reservation to cache",
				zap.String("product_id", event.ProductID),
				zap.Error(err))
			return err
		}
		util.CacheSyncEventsTotal.WithLabelValues("reserved").Inc()

	case broker.EventTypeStockReleased:
		var event broker.StockReleasedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			w.logger.Error("Failed to unmarshal StockReleased event", zap.Error(err))
			return nil
		}
		if err := w.cache.ApplyStockDelta(ctx, event.ProductID, event.Quantity); err != nil {
			w.logger.Error("Failed to apply release to cache",
				zap.String("product_id", event.ProductID),
				zap.Error(err))
			return err
		}
		util.CacheSyncEventsTotal.WithLabelValues("released").Inc()

	case broker.EventTypeProductCreated:
		var event broker.ProductCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			w.logger.Error("Failed to unmarshal ProductCreated event", zap.Error(err))
			return nil
		}
		if err := w.cache.SetSnapshot(ctx, event.ProductID, redisclient.Snapshot{
			Name:       event.Name,
			PriceCents: event.PriceCents,
			Currency:   event.Currency,
			Available:  event.Available,
		}); err != nil {
			w.logger.Error("Failed to cache new product snapshot",
				zap.String("product_id", event.ProductID),
				zap.Error(err))
			return err
		}
		util.CacheSyncEventsTotal.WithLabelValues("created").Inc()
	}

	return nil
}
