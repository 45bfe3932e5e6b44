package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/keirinjingle/mofu/internal/types"
)

// DefaultRidersURL is the public rider roster feed.
const DefaultRidersURL = "https://keirinjingle.github.io/keirin-links/senshuID.json"

// DefaultRacesURLTemplate is the day-card feed; %s is the YYYYMMDD date.
const DefaultRacesURLTemplate = "https://keirinjingle.github.io/date/keirin_race_list_%s.json"

const maxFeedBytes = 10 * 1024 * 1024

var kiRe = regexp.MustCompile(`(\d+)期`)

// riderRow is the upstream rider feed shape. Keys are the feed's own
// Japanese column names; normalization happens in Load.
type riderRow struct {
	Name    string `json:"選手名"`
	Ki      string `json:"期"`
	Region  string `json:"地域"`
	Grade   string `json:"級"`
	RegNo   string `json:"登録番号"`
	Profile string `json:"プロフィールURL"`
}

// Status reports per-feed load outcomes. A failed feed is not an error:
// dependent features degrade to whatever data is present.
type Status struct {
	RidersOK bool
	RacesOK  bool
}

// Loader fetches and normalizes the two reference feeds.
type Loader struct {
	RidersURL    string
	RacesURLTmpl string
	Client       *http.Client
	Logger       *log.Logger
	Now          func() time.Time
}

// NewLoader returns a Loader with the public feed endpoints and a 30s
// HTTP timeout.
func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Loader{
		RidersURL:    DefaultRidersURL,
		RacesURLTmpl: DefaultRacesURLTemplate,
		Client:       &http.Client{Timeout: 30 * time.Second},
		Logger:       logger,
		Now:          time.Now,
	}
}

// Load fetches both feeds and returns the populated cache plus per-feed
// status. A feed failure is logged and leaves that side of the cache empty.
func (l *Loader) Load(ctx context.Context) (*Cache, Status) {
	cache := &Cache{}
	var st Status

	riders, err := l.fetchRiders(ctx)
	if err != nil {
		l.Logger.Printf("rider feed fetch failed: %v", err)
	} else {
		cache.Riders = riders
		st.RidersOK = true
	}

	cards, err := l.fetchDayCards(ctx)
	if err != nil {
		l.Logger.Printf("day-card feed fetch failed: %v", err)
	} else {
		cache.DayCards = cards
		st.RacesOK = true
	}

	return cache, st
}

func (l *Loader) fetchRiders(ctx context.Context) ([]types.RiderRecord, error) {
	var rows []riderRow
	if err := l.getJSON(ctx, l.RidersURL, &rows); err != nil {
		return nil, err
	}

	riders := make([]types.RiderRecord, 0, len(rows))
	for _, r := range rows {
		riders = append(riders, types.RiderRecord{
			ID:      r.RegNo,
			Name:    r.Name,
			Region:  r.Region,
			Ki:      ExtractKi(r.Ki),
			Grade:   r.Grade,
			Profile: normalizeProfileURL(r.Profile),
		})
	}
	return riders, nil
}

func (l *Loader) fetchDayCards(ctx context.Context) ([]types.VenueDayCard, error) {
	url := fmt.Sprintf(l.RacesURLTmpl, l.Now().Format("20060102"))
	var cards []types.VenueDayCard
	if err := l.getJSON(ctx, url, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (l *Loader) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "mofu/1.0 (keirin-notes)")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := l.Client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// ExtractKi normalizes the career-class column to its "N期" core. Text
// without the pattern passes through unchanged.
func ExtractKi(kiText string) string {
	if m := kiRe.FindStringSubmatch(kiText); m != nil {
		return m[1] + "期"
	}
	return kiText
}

// normalizeProfileURL repairs the doubled-scheme glitch the rider feed
// occasionally carries ("https://keirin.netkeiba.comhttps://...").
func normalizeProfileURL(u string) string {
	return strings.Replace(u, "https://keirin.netkeiba.comhttps://", "https://", 1)
}
