package source

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Aggregator bundles the configured collaborators behind one handle
// for the pipeline and the API server.
type Aggregator struct {
	market   MarketSource
	forecast ForecastProvider
	sim      *SimForecast
	registry DriverRegistry
}

// NewAggregator wires the collaborators together. market, forecast,
// and registry may be nil when a deployment runs without that live
// source; the pipeline then falls back for every request.
func NewAggregator(market MarketSource, forecast ForecastProvider, registry DriverRegistry) *Aggregator {
	return &Aggregator{
		market:   market,
		forecast: forecast,
		sim:      NewSimForecast(),
		registry: registry,
	}
}

// Market returns the live market source (may be nil).
func (a *Aggregator) Market() MarketSource { return a.market }

// ForecastProvider returns the live forecast provider (may be nil).
func (a *Aggregator) ForecastProvider() ForecastProvider { return a.forecast }

// Simulated returns the always-available baseline forecast provider.
func (a *Aggregator) Simulated() *SimForecast { return a.sim }

// Registry returns the driver registry (may be nil).
func (a *Aggregator) Registry() DriverRegistry { return a.registry }

// SourceHealth is one collaborator's probe outcome.
type SourceHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Health probes every configured collaborator concurrently. Sources
// that do not implement HealthChecker are reported healthy by default.
func (a *Aggregator) Health(ctx context.Context) []SourceHealth {
	type named struct {
		name string
		src  any
	}
	var sources []named
	if a.market != nil {
		sources = append(sources, named{a.market.Name(), a.market})
	}
	if a.forecast != nil {
		sources = append(sources, named{a.forecast.Name(), a.forecast})
	}
	if a.registry != nil {
		sources = append(sources, named{a.registry.Name(), a.registry})
	}

	results := make([]SourceHealth, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sources {
		i, s := i, s
		g.Go(func() error {
			results[i] = SourceHealth{Name: s.name, Healthy: true}
			if hc, ok := s.src.(HealthChecker); ok {
				if err := hc.HealthCheck(gctx); err != nil {
					results[i].Healthy = false
					results[i].Error = err.Error()
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
