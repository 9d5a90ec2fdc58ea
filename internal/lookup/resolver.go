package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/batch"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/config"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/logging"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/services/snipeit"
)

// Resolver pre-fills candidate records from the asset registry, degrading to
// a local heuristic when the registry is unavailable or has no match. Registry
// failures never propagate to callers; they are logged here and collapsed into
// a not-found result.
type Resolver struct {
	client           snipeit.API
	fallbackCategory string
	tagPrefix        string
	tagMaxDigits     int
	logger           *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClient overrides the registry client, primarily for tests.
func WithClient(client snipeit.API) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// NewResolver builds a Resolver from configuration. When the registry URL or
// token is missing, lookups skip straight to the fallback classifier.
func NewResolver(cfg *config.Config, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		fallbackCategory: cfg.Snipe.FallbackCategory,
		tagPrefix:        cfg.Snipe.TagPrefix,
		tagMaxDigits:     cfg.Snipe.TagMaxDigits,
		logger:           logging.NewComponentLogger(logger, "lookup"),
	}

	client, err := snipeit.New(
		cfg.Snipe.URL,
		cfg.Snipe.Token,
		cfg.Snipe.VerifySSL,
		time.Duration(cfg.Snipe.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		if errors.Is(err, snipeit.ErrNotConfigured) {
			r.logger.Info("registry lookups disabled", logging.String("reason", "snipe-it url or token not set"))
		} else {
			r.logger.Warn("registry client unavailable", logging.Error(err))
		}
	} else {
		r.client = client
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegistryEnabled reports whether a registry client is configured.
func (r *Resolver) RegistryEnabled() bool {
	return r.client != nil
}

// Resolve looks up term in the registry (tag, then serial, then free-text
// search) and maps the first hit onto a Record. The boolean reports whether
// the registry produced the record; false means the fallback classifier did.
func (r *Resolver) Resolve(ctx context.Context, term string) (batch.Record, bool) {
	term = strings.TrimSpace(term)

	if r.client != nil && term != "" {
		if hw := r.query(ctx, term); hw != nil {
			return r.recordFromHardware(hw), true
		}
	}
	return r.Classify(term), false
}

func (r *Resolver) query(ctx context.Context, term string) *snipeit.Hardware {
	lookups := []struct {
		name string
		fn   func(context.Context, string) (*snipeit.Hardware, error)
	}{
		{"bytag", r.client.FindByTag},
		{"byserial", r.client.FindBySerial},
		{"search", r.client.Search},
	}

	for _, lookup := range lookups {
		hw, err := lookup.fn(ctx, term)
		if err == nil && hw != nil {
			return hw
		}
		if err != nil && !errors.Is(err, snipeit.ErrNotFound) {
			// Collapsed to not-found for the caller, but keep the cause.
			r.logger.Warn("registry lookup failed",
				logging.String("endpoint", lookup.name),
				logging.Error(err))
		}
	}
	return nil
}

func (r *Resolver) recordFromHardware(hw *snipeit.Hardware) batch.Record {
	category := normalizeLabel(hw.Category.Name)
	if category == "" {
		category = r.fallbackCategory
	}

	manufacturer := strings.TrimSpace(hw.Manufacturer.Name)
	model := strings.TrimSpace(hw.Model.Name)
	description := strings.TrimSpace(manufacturer + " " + model)

	return batch.Record{
		EquipmentType:   category,
		ItemDescription: description,
		SerialNumber:    hw.Serial,
		TempleTag:       hw.AssetTag,
	}
}
