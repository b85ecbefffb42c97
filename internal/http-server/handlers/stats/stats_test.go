package stats

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"invitetracker/entity"
)

type stubCore struct {
	gotGuildID string
	gotUserID  string
	gotRange   *entity.DateRange
}

func (s *stubCore) UserStats(guildID, userID string, dateRange *entity.DateRange) (*entity.UserStats, error) {
	s.gotGuildID = guildID
	s.gotUserID = userID
	s.gotRange = dateRange
	return &entity.UserStats{UserID: userID, InvitedMembers: 2, UniqueUsers: 2, TotalJoins: 3}, nil
}

func serveRequest(core *stubCore, windowed bool, target string) *httptest.ResponseRecorder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	if windowed {
		router.Get("/api/stats/{userId}/history", History(logger, core))
	} else {
		router.Get("/api/stats/{userId}", Get(logger, core))
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetPassesGuildScope(t *testing.T) {
	core := &stubCore{}

	rec := serveRequest(core, false, "/api/stats/u1?guildId=g1")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "g1", core.gotGuildID)
	require.Equal(t, "u1", core.gotUserID)
	require.Contains(t, rec.Body.String(), `"invitedMembers":2`)
}

func TestGetAcceptsOmittedGuildID(t *testing.T) {
	core := &stubCore{}

	rec := serveRequest(core, false, "/api/stats/u1")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "", core.gotGuildID)
}

func TestHistoryParsesDateWindow(t *testing.T) {
	core := &stubCore{}

	rec := serveRequest(core, true, "/api/stats/u1/history?guildId=g1&startDate=2026-01-01&endDate=2026-02-01")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, core.gotRange)
	require.NotNil(t, core.gotRange.From)
	require.NotNil(t, core.gotRange.To)
}

func TestHistoryRejectsBadDate(t *testing.T) {
	rec := serveRequest(&stubCore{}, true, "/api/stats/u1/history?guildId=g1&startDate=notadate")

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
