package storage

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hamzaelk/offerpipe/internal/model"
)

// ReadOffers aggregates every .json object in bucket into one record list.
// Objects holding arrays are extended, single objects are appended, and
// invalid JSON is skipped with a warning rather than failing the read: one
// corrupt scraper dump must not block the run.
func ReadOffers(ctx context.Context, store ObjectStore, bucket string, logger *slog.Logger) ([]model.RawOffer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	keys, err := store.List(ctx, bucket, ".json")
	if err != nil {
		return nil, err
	}

	var offers []model.RawOffer
	for _, key := range keys {
		data, err := store.Get(ctx, bucket, key)
		if err != nil {
			logger.Warn("skipping unreadable object", "bucket", bucket, "key", key, "error", err)
			continue
		}

		var list []model.RawOffer
		if err := json.Unmarshal(data, &list); err == nil {
			offers = append(offers, list...)
			continue
		}
		var one model.RawOffer
		if err := json.Unmarshal(data, &one); err == nil {
			offers = append(offers, one)
			continue
		}
		logger.Warn("skipping invalid JSON object", "bucket", bucket, "key", key)
	}

	logger.Info("loaded offers", "bucket", bucket, "objects", len(keys), "offers", len(offers))
	return offers, nil
}

// NewFromBackend selects an ObjectStore implementation by name.
func NewFromBackend(backend, root, endpoint, accessKey, secretKey string, useSSL bool) (ObjectStore, error) {
	if backend == "minio" {
		return NewMinio(endpoint, accessKey, secretKey, useSSL)
	}
	return NewFS(root), nil
}
