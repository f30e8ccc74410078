package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/smfplay/pkg/player"
)

// oneNote is a format 0 file at 96 ticks per quarter: a track name, one
// quarter note of middle C, end of track.
var oneNote = []byte{
	'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0, 96,
	'M', 'T', 'r', 'k', 0, 0, 0, 20,
	0x00, 0xFF, 0x03, 0x04, 'l', 'e', 'a', 'd',
	0x00, 0x90, 0x3C, 0x64,
	0x60, 0x80, 0x3C, 0x00,
	0x00, 0xFF, 0x2F, 0x00,
}

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	return NewServer(player.DefaultConfig(), log.New(io.Discard))
}

func upload(t *testing.T, s *Server, target, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if data != nil {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "healthy")
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestPreflight(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/inspect", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStrategies(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/strategies", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Strategies []string `json:"strategies"`
		Default    string   `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"merged", "independent"}, body.Strategies)
	assert.Equal(t, "merged", body.Default)
}

func TestInspect(t *testing.T) {
	s := newTestServer()
	rec := upload(t, s, "/api/v1/inspect?events=true", "song.mid", oneNote)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "song.mid", resp.Filename)
	assert.Equal(t, uint16(0), resp.Format)
	assert.Equal(t, uint16(96), resp.Division)
	assert.Equal(t, int64(500000), resp.DurationMicros)

	require.Len(t, resp.Tracks, 1)
	tr := resp.Tracks[0]
	assert.Equal(t, "lead", tr.Name)
	assert.Equal(t, 14, tr.Offset)
	assert.Equal(t, uint32(20), tr.Length)
	assert.Equal(t, uint64(96), tr.Ticks)
	assert.Equal(t, 4, tr.EventCount)
	assert.Empty(t, tr.Error)
	require.Len(t, tr.Events, 4)
	assert.Equal(t, "meta", tr.Events[0].Type)
	assert.Equal(t, "channel", tr.Events[1].Type)
	assert.Equal(t, uint32(96), tr.Events[2].Delta)
}

func TestInspectWithoutEvents(t *testing.T) {
	s := newTestServer()
	rec := upload(t, s, "/api/v1/inspect", "song.mid", oneNote)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tracks, 1)
	assert.Nil(t, resp.Tracks[0].Events)
}

func TestTimeline(t *testing.T) {
	s := newTestServer()
	rec := upload(t, s, "/api/v1/timeline", "song.mid", oneNote)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TimelineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(96), resp.Ticks)
	assert.Equal(t, int64(500000), resp.DurationMicros)
	assert.Equal(t, 4, resp.Total)
	require.Len(t, resp.Events, 4)
	assert.Equal(t, int64(0), resp.Events[1].Micros)
	assert.Equal(t, int64(500000), resp.Events[2].Micros)
	assert.Equal(t, uint64(96), resp.Events[2].Tick)

	rec = upload(t, s, "/api/v1/timeline?limit=2", "song.mid", oneNote)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Total)
	assert.Len(t, resp.Events, 2)

	rec = upload(t, s, "/api/v1/timeline?limit=0", "song.mid", oneNote)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Events, 4)

	for _, bad := range []string{"x", "-1"} {
		rec = upload(t, s, "/api/v1/timeline?limit="+bad, "song.mid", oneNote)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer()
	s.maxUpload = 64

	padded := append(append([]byte(nil), oneNote...), make([]byte, 256)...)
	for _, target := range []string{"/api/v1/inspect", "/api/v1/timeline"} {
		rec := upload(t, s, target, "song.mid", padded)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, target)
	}

	s.maxUpload = MaxUploadSize
	rec := upload(t, s, "/api/v1/inspect", "song.mid", padded)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnexpectedExtensionIsLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	s := NewServer(player.DefaultConfig(), log.New(&logs))

	rec := upload(t, s, "/api/v1/inspect", "song.bin", oneNote)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), "unexpected file extension")
	assert.Contains(t, logs.String(), "song.bin")

	logs.Reset()
	rec = upload(t, s, "/api/v1/inspect", "song.mid", oneNote)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, logs.String(), "unexpected file extension")
}

func TestUploadErrors(t *testing.T) {
	smpte := append([]byte(nil), oneNote...)
	smpte[12], smpte[13] = 0xE7, 0x28

	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{"no file", nil, "No file uploaded"},
		{"not smf", []byte("RIFF....WAVE"), "not a Standard MIDI File"},
		{"truncated", oneNote[:10], "truncated"},
		{"smpte", smpte, "unsupported timing"},
	}

	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, target := range []string{"/api/v1/inspect", "/api/v1/timeline"} {
				rec := upload(t, s, target, "x.mid", tt.data)
				assert.Equal(t, http.StatusBadRequest, rec.Code, target)

				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Contains(t, body["error"], tt.wantErr)
			}
		})
	}
}
