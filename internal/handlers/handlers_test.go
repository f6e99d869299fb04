package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/hub"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/registry"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/schedule"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

type fakeSchedule struct {
	mu       sync.Mutex
	result   schedule.Result
	contexts map[string]string
	last     string
	league   string
	target   time.Time
}

func (f *fakeSchedule) FetchSchedule(ctx context.Context, league string, target time.Time) schedule.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.league = league
	f.target = target

	res := f.result
	res.League = league
	res.Date = target.Format("2006-01-02")
	return res
}

func (f *fakeSchedule) Context() string                 { return f.last }
func (f *fakeSchedule) ContextFor(league string) string { return f.contexts[league] }
func (f *fakeSchedule) Location() *time.Location        { return time.UTC }

func newTestServer(t *testing.T, svc *fakeSchedule) *httptest.Server {
	t.Helper()
	h := NewHandler(svc, registry.New(), zerolog.Nop())
	h.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }

	srv := httptest.NewServer(NewRouter(h, nil, []string{"*"}, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, &fakeSchedule{})

	var body map[string]interface{}
	status := getJSON(t, srv.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(2), body["leagues"])
}

func TestGetSchedule_Fresh(t *testing.T) {
	fetched := time.Date(2026, 10, 16, 11, 59, 0, 0, time.UTC)
	svc := &fakeSchedule{result: schedule.Result{
		Source:    schedule.SourceFresh,
		FetchedAt: fetched,
		Games:     []models.CanonicalGame{{ID: "g1", HomeTeam: "Boston Bruins", AwayTeam: "New York Rangers"}},
	}}
	srv := newTestServer(t, svc)

	var body ScheduleResponse
	status := getJSON(t, srv.URL+"/api/v1/schedule?league=icehockey_nhl&date=2026-10-17", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "icehockey_nhl", body.League)
	assert.Equal(t, "2026-10-17", body.Date)
	assert.Equal(t, schedule.SourceFresh, body.Source)
	assert.Equal(t, 1, body.Count)
	require.NotNil(t, body.FetchedAt)
	assert.True(t, fetched.Equal(*body.FetchedAt))
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), svc.target)
}

func TestGetSchedule_DefaultsToFirstLeagueAndToday(t *testing.T) {
	svc := &fakeSchedule{result: schedule.Result{Source: schedule.SourceCache}}
	srv := newTestServer(t, svc)

	var body ScheduleResponse
	status := getJSON(t, srv.URL+"/api/v1/schedule", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "americanfootball_nfl", svc.league)
	assert.Equal(t, "2026-10-16", body.Date)
	assert.NotNil(t, body.Games)
	assert.Nil(t, body.FetchedAt)
}

func TestGetSchedule_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		result schedule.Result
		want   int
	}{
		{
			name:  "bad date",
			query: "?league=icehockey_nhl&date=10/16/2026",
			want:  http.StatusBadRequest,
		},
		{
			name:  "unknown league",
			query: "?league=basketball_nba",
			want:  http.StatusNotFound,
		},
		{
			name:   "both feeds down",
			query:  "?league=icehockey_nhl",
			result: schedule.Result{Source: schedule.SourceFailed},
			want:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeSchedule{result: tt.result})

			resp, err := http.Get(srv.URL + "/api/v1/schedule" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestGetSchedule_StaleIsServed(t *testing.T) {
	svc := &fakeSchedule{result: schedule.Result{
		Source: schedule.SourceStale,
		Games:  []models.CanonicalGame{{ID: "g1"}},
	}}
	srv := newTestServer(t, svc)

	var body ScheduleResponse
	status := getJSON(t, srv.URL+"/api/v1/schedule?league=icehockey_nhl", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, schedule.SourceStale, body.Source)
	assert.Equal(t, 1, body.Count)
}

func TestGetContext(t *testing.T) {
	svc := &fakeSchedule{
		last:     "NFL digest",
		contexts: map[string]string{"icehockey_nhl": "NHL digest"},
	}
	srv := newTestServer(t, svc)

	var body map[string]string
	status := getJSON(t, srv.URL+"/api/v1/context?league=icehockey_nhl", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "NHL digest", body["context"])
	assert.True(t, strings.HasPrefix(body["preamble"], "[Current games and odds]\nNHL digest"))

	body = nil
	getJSON(t, srv.URL+"/api/v1/context", &body)
	assert.Equal(t, "NFL digest", body["context"])

	body = nil
	getJSON(t, srv.URL+"/api/v1/context?league=americanfootball_nfl", &body)
	assert.Equal(t, "", body["context"])
	assert.Equal(t, "", body["preamble"])
}

func TestGetContext_UnknownLeague(t *testing.T) {
	srv := newTestServer(t, &fakeSchedule{})

	var body ErrorResponse
	status := getJSON(t, srv.URL+"/api/v1/context?league=soccer_epl", &body)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.StatusNotFound, body.Code)
}

func TestGetLeagues(t *testing.T) {
	srv := newTestServer(t, &fakeSchedule{})

	var body struct {
		Leagues []LeagueInfo `json:"leagues"`
		Count   int          `json:"count"`
	}
	status := getJSON(t, srv.URL+"/api/v1/leagues", &body)

	assert.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "americanfootball_nfl", body.Leagues[0].SportKey)
	assert.Equal(t, "Spread", body.Leagues[0].SpreadLabel)
	assert.False(t, body.Leagues[0].HasStandings)
	assert.Equal(t, "icehockey_nhl", body.Leagues[1].SportKey)
	assert.Equal(t, "Puck Line", body.Leagues[1].SpreadLabel)
	assert.True(t, body.Leagues[1].HasStandings)
}

func TestWebSocket_ReceivesScheduleUpdate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := hub.NewHub(zerolog.Nop())
	go b.Run(ctx)

	h := NewHandler(&fakeSchedule{}, registry.New(), zerolog.Nop())
	ws := NewWebSocketHandler(ctx, b, nil, zerolog.Nop())
	srv := httptest.NewServer(NewRouter(h, ws, []string{"*"}, zerolog.Nop()))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return b.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, b.PublishSnapshot(ctx, models.ScheduleSnapshot{
		League: "icehockey_nhl",
		Date:   "2026-10-16",
		Games:  []models.CanonicalGame{{ID: "g1"}},
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string                  `json:"type"`
		Payload models.ScheduleSnapshot `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, models.MessageTypeScheduleUpdate, msg.Type)
	assert.Equal(t, "icehockey_nhl", msg.Payload.League)
	require.Len(t, msg.Payload.Games, 1)
	assert.Equal(t, "g1", msg.Payload.Games[0].ID)
}

func TestWebSocket_SubscribeReplaysLatestBoard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := hub.NewHub(zerolog.Nop())
	go b.Run(ctx)

	fetched := time.Date(2026, 10, 16, 11, 59, 0, 0, time.UTC)
	require.NoError(t, b.PublishSnapshot(ctx, models.ScheduleSnapshot{
		League:    "icehockey_nhl",
		Date:      "2026-10-16",
		Games:     []models.CanonicalGame{{ID: "g1"}, {ID: "g2"}},
		FetchedAt: fetched,
	}))

	h := NewHandler(&fakeSchedule{}, registry.New(), zerolog.Nop())
	ws := NewWebSocketHandler(ctx, b, nil, zerolog.Nop())
	srv := httptest.NewServer(NewRouter(h, ws, []string{"*"}, zerolog.Nop()))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.ClientMessage{
		Type:    models.MessageTypeSubscribe,
		Leagues: []string{"icehockey_nhl"},
		Dates:   []string{"2026-10-16"},
	}))
	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageTypeStatus}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var update struct {
		Type    string                  `json:"type"`
		Payload models.ScheduleSnapshot `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, models.MessageTypeScheduleUpdate, update.Type)
	assert.Len(t, update.Payload.Games, 2)

	// the board is sent once even if the broadcast and the replay both saw it
	var status struct {
		Type    string             `json:"type"`
		Payload models.BoardStatus `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&status))
	assert.Equal(t, models.MessageTypeStatus, status.Type)
	assert.Equal(t, []string{"icehockey_nhl"}, status.Payload.Subscription.Leagues)
	require.Len(t, status.Payload.Delivered, 1)
	assert.True(t, fetched.Equal(status.Payload.Delivered[0].FetchedAt))
	assert.Equal(t, 2, status.Payload.Delivered[0].Games)
}

func TestOriginChecker(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	assert.True(t, originChecker(nil)(req))
	assert.True(t, originChecker([]string{"*"})(req))

	check := originChecker([]string{"https://board.example.com"})
	req.Header.Set("Origin", "https://board.example.com")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}
