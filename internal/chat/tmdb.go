package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eliswilliam/CINEHOME/internal/config"
)

// NotAvailable marks optional movie fields with no data.
const NotAvailable = "N/A"

// ErrMovieNotFound reports that no catalog entry matched the title.
var ErrMovieNotFound = errors.New("movie not found")

// Movie is the normalized metadata carried into the assistant prompt.
// Produced fresh per lookup, never cached across turns.
type Movie struct {
	Title         string
	OriginalTitle string
	Year          string
	Rating        float64
	Votes         int
	Genres        []string
	Runtime       string
	Synopsis      string
	Popularity    float64
	Status        string
	Budget        string
	Revenue       string
}

// TMDBClient looks up movie metadata from the external catalog provider.
type TMDBClient struct {
	baseURL  string
	apiKey   string
	language string
	http     *http.Client
}

// NewTMDBClient builds a metadata client from config.
func NewTMDBClient(cfg config.TMDBConfig) *TMDBClient {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	language := cfg.Language
	if language == "" {
		language = "pt-BR"
	}
	return &TMDBClient{
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		language: language,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Results []struct {
		ID int64 `json:"id"`
	} `json:"results"`
}

type movieDetails struct {
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Genres        []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Runtime    int     `json:"runtime"`
	Overview   string  `json:"overview"`
	Popularity float64 `json:"popularity"`
	Status     string  `json:"status"`
	Budget     int64   `json:"budget"`
	Revenue    int64   `json:"revenue"`
}

// Resolve searches the catalog for the title and returns normalized
// metadata, or ErrMovieNotFound when nothing matches.
func (c *TMDBClient) Resolve(ctx context.Context, title string) (*Movie, error) {
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("language", c.language)
	query.Set("query", title)

	var search searchResponse
	if err := c.getJSON(ctx, "/search/movie?"+query.Encode(), &search); err != nil {
		return nil, fmt.Errorf("search movie: %w", err)
	}
	if len(search.Results) == 0 {
		return nil, ErrMovieNotFound
	}

	detailQuery := url.Values{}
	detailQuery.Set("api_key", c.apiKey)
	detailQuery.Set("language", c.language)

	var details movieDetails
	path := fmt.Sprintf("/movie/%d?%s", search.Results[0].ID, detailQuery.Encode())
	if err := c.getJSON(ctx, path, &details); err != nil {
		return nil, fmt.Errorf("movie details: %w", err)
	}

	return normalizeMovie(details), nil
}

func (c *TMDBClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrMovieNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func normalizeMovie(d movieDetails) *Movie {
	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}
	return &Movie{
		Title:         d.Title,
		OriginalTitle: d.OriginalTitle,
		Year:          releaseYear(d.ReleaseDate),
		Rating:        d.VoteAverage,
		Votes:         d.VoteCount,
		Genres:        genres,
		Runtime:       formatRuntime(d.Runtime),
		Synopsis:      orNotAvailable(d.Overview),
		Popularity:    d.Popularity,
		Status:        orNotAvailable(d.Status),
		Budget:        formatMoney(d.Budget),
		Revenue:       formatMoney(d.Revenue),
	}
}

func releaseYear(date string) string {
	if len(date) < 4 {
		return NotAvailable
	}
	return date[:4]
}

func formatRuntime(minutes int) string {
	if minutes <= 0 {
		return NotAvailable
	}
	h := minutes / 60
	m := minutes % 60
	if h == 0 {
		return fmt.Sprintf("%dmin", m)
	}
	return fmt.Sprintf("%dh %dmin", h, m)
}

func formatMoney(value int64) string {
	if value <= 0 {
		return NotAvailable
	}
	digits := fmt.Sprintf("%d", value)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return "US$ " + b.String()
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
