package cmd

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lukman83/dishscout/internal/aggregate"
	"github.com/lukman83/dishscout/internal/app"
	"github.com/lukman83/dishscout/internal/compare"
	"github.com/lukman83/dishscout/internal/delivery"
	"github.com/lukman83/dishscout/internal/httputil"
	"github.com/lukman83/dishscout/internal/platform"
	"github.com/lukman83/dishscout/internal/refine"
	"github.com/lukman83/dishscout/internal/search"
	"github.com/lukman83/dishscout/internal/stealth"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// buildHTTPClient creates the stealth-wrapped HTTP client from config.
func buildHTTPClient() (*http.Client, error) {
	profile, err := stealth.ParseDelayProfile(cfg.Stealth.DelayProfile)
	if err != nil {
		return nil, err
	}
	transport, err := stealth.New(httputil.NewTransport(), stealth.Options{
		DelayProfile:  profile,
		RatePerSecond: cfg.Stealth.RatePerSecond,
		RateBurst:     cfg.Stealth.RateBurst,
		RespectRobots: cfg.Stealth.RespectRobots,
		Proxy: stealth.ProxyOptions{
			Mode:           cfg.Stealth.ProxyMode,
			DecodoUsername: cfg.Stealth.DecodoUsername,
			DecodoPassword: cfg.Stealth.DecodoPassword,
			DecodoCountry:  cfg.Stealth.DecodoCountry,
			DecodoCity:     cfg.Stealth.DecodoCity,
			File:           cfg.Stealth.ProxyFile,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build stealth transport: %w", err)
	}
	return httputil.NewHTTPClient(transport), nil
}

// buildApp registers every platform adapter and assembles the pipeline. The
// returned closer shuts the headless browser down, if one was started.
func buildApp() (*app.App, io.Closer, error) {
	client, err := buildHTTPClient()
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	var headless platform.Strategy
	if cfg.Platforms.HeadlessFallback {
		h := delivery.NewHeadlessStrategy(cfg.Platforms.BrowserBin)
		headless, closer = h, h
	}

	reg := platform.Default()
	delivery.RegisterAll(reg, func(id string) delivery.Options {
		return delivery.Options{
			Client:   client,
			Retries:  cfg.Platforms.Retries,
			Timeout:  cfg.TimeoutFor(id),
			Headless: headless,
			Logger:   logger,
		}
	})

	markets := make(map[string]search.Market, len(cfg.Countries))
	for code, cc := range cfg.Countries {
		markets[strings.ToUpper(code)] = search.Market{Platforms: cc.Platforms, Lat: cc.Lat, Lon: cc.Lon}
	}

	agg := aggregate.New(reg, aggregate.Options{
		Timeout:  cfg.Platforms.Timeout,
		Timeouts: cfg.Platforms.Timeouts,
	}, logger)

	ref, err := reg.Get(cfg.Refine.ReferencePlatform)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("reference platform: %w", err)
	}

	return &app.App{
		Search: search.New(agg, search.Options{
			PerPage:        cfg.Search.PerPage,
			DefaultCountry: cfg.Search.DefaultCountry,
			Markets:        markets,
			DistanceMode:   compare.DistanceMode(cfg.Search.DistanceMode),
		}, logger),
		Refiner: refine.New(ref, refine.Options{
			MinResults: cfg.Refine.MinResults,
			Budget:     cfg.Refine.Budget,
		}, logger),
		Registry: reg,
		Markets:  markets,
	}, closer, nil
}
