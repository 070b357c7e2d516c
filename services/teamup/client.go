package teamup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/primego-bg/sites-by-appointments/config"
	syncsvc "github.com/primego-bg/sites-by-appointments/services/sync"
	"github.com/primego-bg/sites-by-appointments/utils"
)

const (
	requestTimeout = 10 * time.Second
	// fetchWindow bounds the forward fetch range passed as endDate.
	fetchWindow = 365 * 24 * time.Hour
)

// Client implements the CalendarProvider collaborator against the Teamup
// HTTP API. The calendar key addresses the calendar; the token goes into
// the Teamup-Token header.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient() *Client {
	base := config.AppConfig.TeamupBaseURL
	if base == "" {
		base = "https://api.teamup.com"
	}
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: requestTimeout},
	}
}

// teamupEvent is the wire shape of one event in Teamup responses.
// Subcalendar ids arrive as numbers; occurrence ids of recurring series are
// the series id plus an "-rid-…" suffix.
type teamupEvent struct {
	ID             string        `json:"id"`
	SubcalendarIDs []json.Number `json:"subcalendar_ids"`
	Title          string        `json:"title"`
	Notes          string        `json:"notes"`
	StartDt        time.Time     `json:"start_dt"`
	EndDt          time.Time     `json:"end_dt"`
	AllDay         bool          `json:"all_day"`
	Rrule          string        `json:"rrule"`
	DeletionDt     *time.Time    `json:"deletion_dt"`
}

type eventsResponse struct {
	Events []teamupEvent `json:"events"`
}

type createEventRequest struct {
	SubcalendarIDs []string `json:"subcalendar_ids"`
	Title          string   `json:"title"`
	Notes          string   `json:"notes,omitempty"`
	StartDt        string   `json:"start_dt"`
	EndDt          string   `json:"end_dt"`
}

type createEventResponse struct {
	Event teamupEvent `json:"event"`
}

func (c *Client) GetConfiguration(ctx context.Context, calendarKey, token string) (*syncsvc.ProviderConfiguration, error) {
	var cfg syncsvc.ProviderConfiguration
	endpoint := fmt.Sprintf("%s/%s/config", c.BaseURL, url.PathEscape(calendarKey))
	if err := c.get(ctx, endpoint, token, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) ListEvents(ctx context.Context, calendarKey, token string, since time.Time) ([]syncsvc.ProviderEvent, error) {
	q := url.Values{}
	q.Set("startDate", since.Format("2006-01-02"))
	q.Set("endDate", since.Add(fetchWindow).Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/%s/events?%s", c.BaseURL, url.PathEscape(calendarKey), q.Encode())

	var resp eventsResponse
	if err := c.get(ctx, endpoint, token, &resp); err != nil {
		return nil, err
	}

	out := make([]syncsvc.ProviderEvent, 0, len(resp.Events))
	for _, ev := range resp.Events {
		subIDs := make([]string, 0, len(ev.SubcalendarIDs))
		for _, id := range ev.SubcalendarIDs {
			subIDs = append(subIDs, id.String())
		}
		out = append(out, syncsvc.ProviderEvent{
			ProviderID:     ev.ID,
			SubCalendarIDs: subIDs,
			Title:          ev.Title,
			Description:    ev.Notes,
			Start:          ev.StartDt,
			End:            ev.EndDt,
			RecurrenceRule: ev.Rrule,
			AllDay:         ev.AllDay,
			DeletedAt:      ev.DeletionDt,
		})
	}
	return out, nil
}

func (c *Client) CreateEvent(ctx context.Context, calendarKey, token string, subCalendarIDs []string, title, description string, start, end time.Time) (string, error) {
	body, err := json.Marshal(createEventRequest{
		SubcalendarIDs: subCalendarIDs,
		Title:          title,
		Notes:          description,
		StartDt:        start.Format(time.RFC3339),
		EndDt:          end.Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/events", c.BaseURL, url.PathEscape(calendarKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Teamup-Token", token)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", utils.NewProviderUnavailable("creating provider event failed", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", utils.NewProviderUnavailable(fmt.Sprintf("provider returned status %d", res.StatusCode), nil)
	}

	var created createEventResponse
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		return "", utils.NewProviderUnavailable("decoding provider response failed", err)
	}
	return created.Event.ID, nil
}

func (c *Client) get(ctx context.Context, endpoint, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Teamup-Token", token)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return utils.NewProviderUnavailable("provider request failed", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return utils.NewProviderUnavailable(fmt.Sprintf("provider returned status %d", res.StatusCode), nil)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
