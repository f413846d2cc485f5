package fred

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	xhttp "MacroPulse/pkg/http"
	"MacroPulse/pkg/util"
)

// DefaultBaseURL is the public FRED REST API root.
const DefaultBaseURL = "https://api.stlouisfed.org/fred"

// Client implements an ObservationProvider backed by the FRED REST API.
type Client struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
}

// New creates a new FRED ObservationProvider.
func New(apiKey, baseURL string, timeout time.Duration) drepo.ObservationProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredObservationsResponse struct {
	Observations []fredObservation `json:"observations"`
}

type fredSeriesResponse struct {
	Seriess []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"seriess"`
}

// FetchObservations fetches raw daily/weekly/monthly observations for the
// series between start and end and resamples them to one value per month,
// keeping the last reported value of each month. Missing placeholders (".")
// are skipped. The result is sorted by month ascending.
func (c *Client) FetchObservations(ctx context.Context, seriesID string, start, end time.Time) ([]models.Observation, error) {
	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("observation_start", start.Format(util.DateLayout))
	params.Set("observation_end", end.Format(util.DateLayout))

	var resp fredObservationsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/series/observations",
		QueryParams: params,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fred observations %s: %w", seriesID, err)
	}

	// Last value per month wins; FRED returns observations date-ascending
	// but we sort defensively before folding.
	raw := resp.Observations
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].Date < raw[j].Date })

	byMonth := make(map[string]float64)
	months := make([]string, 0)
	for _, o := range raw {
		if o.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		d, ok := util.ParseDate(o.Date)
		if !ok {
			continue
		}
		m := util.MonthKey(d)
		if _, seen := byMonth[m]; !seen {
			months = append(months, m)
		}
		byMonth[m] = v
	}

	obs := make([]models.Observation, 0, len(months))
	for _, m := range months {
		obs = append(obs, models.Observation{Month: m, Value: byMonth[m]})
	}
	return obs, nil
}

// FetchSeriesTitle looks up the human-readable title of a series.
func (c *Client) FetchSeriesTitle(ctx context.Context, seriesID string) (string, error) {
	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")

	var resp fredSeriesResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/series",
		QueryParams: params,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("fred series %s: %w", seriesID, err)
	}

	if len(resp.Seriess) == 0 {
		return "", fmt.Errorf("fred series %s: not found", seriesID)
	}
	return resp.Seriess[0].Title, nil
}
