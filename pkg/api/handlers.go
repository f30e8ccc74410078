package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/james-see/smfplay/pkg/player"
	"github.com/james-see/smfplay/pkg/smf"
)

// EventInfo describes one decoded event.
type EventInfo struct {
	Delta       uint32 `json:"delta"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// TrackInfo summarises one track chunk.
type TrackInfo struct {
	Index      int         `json:"index"`
	Name       string      `json:"name,omitempty"`
	Offset     int         `json:"offset"`
	Length     uint32      `json:"length"`
	Ticks      uint64      `json:"ticks"`
	EventCount int         `json:"event_count"`
	Error      string      `json:"error,omitempty"`
	Events     []EventInfo `json:"events,omitempty"`
}

// InspectResponse is the body returned by /inspect.
type InspectResponse struct {
	Filename       string      `json:"filename"`
	Format         uint16      `json:"format"`
	DeclaredTracks uint16      `json:"declared_tracks"`
	Division       uint16      `json:"division"`
	DurationMicros int64       `json:"duration_us"`
	Tracks         []TrackInfo `json:"tracks"`
}

// TimelineEntry is one event of the merged timeline.
type TimelineEntry struct {
	Tick   uint64 `json:"tick"`
	Track  int    `json:"track"`
	Micros int64  `json:"at_us"`
	Type   string `json:"type"`
	Event  string `json:"event"`
}

// TimelineResponse is the body returned by /timeline.
type TimelineResponse struct {
	Filename       string          `json:"filename"`
	Division       uint16          `json:"division"`
	Ticks          uint64          `json:"ticks"`
	DurationMicros int64           `json:"duration_us"`
	Total          int             `json:"total"`
	Events         []TimelineEntry `json:"events"`
}

// handleInspect godoc
// @Summary Inspect a MIDI file
// @Description Upload a Standard MIDI File and receive its header and decoded tracks
// @Tags inspect
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to inspect"
// @Param events query bool false "Include every decoded event"
// @Success 200 {object} InspectResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/inspect [post]
func (s *Server) handleInspect(c *gin.Context) {
	name, f, ok := s.parseUpload(c)
	if !ok {
		return
	}
	withEvents, _ := strconv.ParseBool(c.DefaultQuery("events", "false"))

	resp := InspectResponse{
		Filename:       name,
		Format:         f.Header.Format,
		DeclaredTracks: f.Header.Tracks,
		Division:       f.Division,
		DurationMicros: player.Merge(f.Tracks).Duration(f.Division).Microseconds(),
		Tracks:         make([]TrackInfo, 0, len(f.Tracks)),
	}
	for _, tr := range f.Tracks {
		info := TrackInfo{
			Index:      tr.Index,
			Name:       tr.Name,
			Offset:     tr.Offset,
			Length:     tr.Length,
			Ticks:      tr.Ticks(),
			EventCount: len(tr.Events),
		}
		if tr.Err != nil {
			info.Error = tr.Err.Error()
		}
		if withEvents {
			for _, ev := range tr.Events {
				info.Events = append(info.Events, EventInfo{
					Delta:       ev.Delta,
					Type:        eventType(ev.Event),
					Description: ev.Event.String(),
				})
			}
		}
		resp.Tracks = append(resp.Tracks, info)
	}
	c.JSON(http.StatusOK, resp)
}

// handleTimeline godoc
// @Summary Merged playback timeline
// @Description Upload a Standard MIDI File and receive every event at its absolute tick and time
// @Tags inspect
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file"
// @Param limit query int false "Return at most this many events (0 = all)"
// @Success 200 {object} TimelineResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/timeline [post]
func (s *Server) handleTimeline(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	name, f, ok := s.parseUpload(c)
	if !ok {
		return
	}

	tl := player.Merge(f.Tracks)
	offsets := tl.Offsets(f.Division)

	resp := TimelineResponse{
		Filename: name,
		Division: f.Division,
		Ticks:    tl.Ticks(),
		Total:    len(tl),
		Events:   make([]TimelineEntry, 0, len(tl)),
	}
	if len(offsets) > 0 {
		resp.DurationMicros = offsets[len(offsets)-1].Microseconds()
	}
	for i, ev := range tl {
		if limit > 0 && i >= limit {
			break
		}
		resp.Events = append(resp.Events, TimelineEntry{
			Tick:   ev.Tick,
			Track:  ev.Track,
			Micros: offsets[i].Microseconds(),
			Type:   eventType(ev.Event),
			Event:  ev.Event.String(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// parseUpload reads the "file" form field and parses it. On failure it writes
// a 400 response and returns false.
func (s *Server) parseUpload(c *gin.Context) (string, *smf.File, bool) {
	if c.Request.ContentLength > s.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return "", nil, false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return "", nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return "", nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return "", nil, false
	}
	if !smf.HasExtension(header.Filename) {
		s.logger.Warn("unexpected file extension", "file", header.Filename)
	}
	if !smf.IsSMF(data) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a Standard MIDI File"})
		return "", nil, false
	}

	f, err := smf.Parse(data, s.cfg.ParseOptions(s.logger)...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": describeParseError(err)})
		return "", nil, false
	}
	return header.Filename, f, true
}

func describeParseError(err error) string {
	switch {
	case errors.Is(err, smf.ErrSMPTEDivision):
		return fmt.Sprintf("unsupported timing: %v", err)
	case errors.Is(err, smf.ErrTruncated):
		return fmt.Sprintf("truncated file: %v", err)
	default:
		return err.Error()
	}
}

func eventType(ev smf.Event) string {
	switch ev.(type) {
	case smf.ChannelVoice:
		return "channel"
	case smf.Meta:
		return "meta"
	case smf.SysEx:
		return "sysex"
	default:
		return "unknown"
	}
}
