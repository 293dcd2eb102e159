package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/agrisense-ai/agrisense/pkg/models"
	"github.com/agrisense-ai/agrisense/pkg/utils"
)

// MandiBoard implements MarketSource by scraping a mandi price-board
// page: an HTML table of commodity rows published per market city.
type MandiBoard struct {
	baseURL string
	cache   *Cache
	limiter *RateLimiter
}

// NewMandiBoard creates a mandi price-board source rooted at baseURL.
// The board for a city is expected at {baseURL}/prices/{city}. Fetches
// are rate limited; cached boards are served without consuming a token.
func NewMandiBoard(baseURL string) *MandiBoard {
	return &MandiBoard{
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   NewCache(5 * time.Minute),
		limiter: NewRateLimiter(10, time.Second),
	}
}

// Name returns the data source name.
func (m *MandiBoard) Name() string { return "Mandi Price Board" }

// SetCacheTTL replaces the board cache with one using the given TTL.
func (m *MandiBoard) SetCacheTTL(ttl time.Duration) {
	m.cache = NewCache(ttl)
}

// Snapshot fetches and parses the price board for the location, then
// picks the row for the crop. Network or parse trouble, and crops
// missing from the board, all surface as ErrUnavailable so the pricing
// stage falls back to the reference price.
func (m *MandiBoard) Snapshot(ctx context.Context, crop, location string) (*models.MarketSnapshot, error) {
	crop = utils.NormalizeCrop(crop)
	key := "mandi:" + strings.ToLower(location)

	board, ok := m.cachedBoard(key)
	if ok && !boardCurrent(board) {
		// The cached board straddles the 6 AM session open: it carries
		// the previous trading day's quotes, so refetch inside the TTL.
		m.cache.Invalidate(key)
		ok = false
	}
	if !ok {
		var err error
		board, err = m.fetchBoard(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		m.cache.Set(key, board)
	}

	snap, ok := board[crop]
	if !ok {
		return nil, fmt.Errorf("%w: no board entry for %s at %s", ErrUnavailable, crop, location)
	}
	out := *snap
	return &out, nil
}

// HealthCheck probes the board index page.
func (m *MandiBoard) HealthCheck(ctx context.Context) error {
	body, _, err := doGet(ctx, m.baseURL+"/prices", nil)
	if err != nil {
		return err
	}
	return body.Close()
}

func (m *MandiBoard) cachedBoard(key string) (map[string]*models.MarketSnapshot, bool) {
	if v, ok := m.cache.Get(key); ok {
		return v.(map[string]*models.MarketSnapshot), true
	}
	return nil, false
}

// boardCurrent reports whether a cached board was fetched in the
// current mandi trading day. Every row carries the fetch timestamp, so
// any one of them answers for the board.
func boardCurrent(board map[string]*models.MarketSnapshot) bool {
	now := utils.NowIST()
	for _, snap := range board {
		return utils.IsSameMandiDay(snap.Timestamp, now)
	}
	return true
}

func (m *MandiBoard) fetchBoard(ctx context.Context, location string) (map[string]*models.MarketSnapshot, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/prices/%s", m.baseURL, url.PathEscape(strings.ToLower(location)))
	body, _, err := doGet(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse board page: %w", err)
	}
	return parseBoard(doc, location), nil
}

// parseBoard extracts commodity rows from the price-board table.
// Expected columns: commodity, modal price (₹/kg), demand, supply.
// Unparseable rows are skipped.
func parseBoard(doc *goquery.Document, location string) map[string]*models.MarketSnapshot {
	board := make(map[string]*models.MarketSnapshot)
	now := utils.NowIST()

	doc.Find("table.price-board tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		crop := utils.NormalizeCrop(cells.Eq(0).Text())
		price, err := parsePriceINR(cells.Eq(1).Text())
		if err != nil || crop == "" {
			return
		}

		snap := &models.MarketSnapshot{
			Crop:      crop,
			Location:  location,
			PriceINR:  price,
			Demand:    models.DemandMedium,
			Supply:    models.SupplyMedium,
			Timestamp: now,
		}
		if cells.Length() > 2 {
			snap.Demand = parseDemand(cells.Eq(2).Text())
		}
		if cells.Length() > 3 {
			snap.Supply = parseSupply(cells.Eq(3).Text())
		}
		board[crop] = snap
	})

	return board
}

// parsePriceINR parses a price cell like "₹45.50", "45.5", or "Rs 45/kg".
func parsePriceINR(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.TrimPrefix(s, "Rs")
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "/ "); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

func parseDemand(s string) models.DemandLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return models.DemandHigh
	case "LOW":
		return models.DemandLow
	default:
		return models.DemandMedium
	}
}

func parseSupply(s string) models.SupplyLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return models.SupplyHigh
	case "LOW":
		return models.SupplyLow
	default:
		return models.SupplyMedium
	}
}
