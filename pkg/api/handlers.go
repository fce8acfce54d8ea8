package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/freed/pkg/capture"
	"github.com/ssargent/freed/pkg/codec"
	"github.com/ssargent/freed/pkg/freed"
)

// maxBodySize bounds request bodies; frames are a few dozen bytes.
const maxBodySize = 64 << 10

// Server holds the API server state
type Server struct {
	store   CaptureStore
	config  ServerConfig
	metrics *Metrics
	log     zerolog.Logger
}

// NewServer creates a new API server. store may be nil, in which case the
// capture endpoints are not mounted.
func NewServer(store CaptureStore, config ServerConfig, metrics *Metrics, log zerolog.Logger) *Server {
	return &Server{
		store:   store,
		config:  config,
		metrics: metrics,
		log:     log,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleSchemas(w http.ResponseWriter, r *http.Request) {
	kinds := freed.Kinds()
	schemas := make([]SchemaInfo, 0, len(kinds))
	for _, k := range kinds {
		schemas = append(schemas, schemaInfo(k))
	}
	sendSuccess(w, schemas)
}

func schemaInfo(k freed.Kind) SchemaInfo {
	info := SchemaInfo{
		Name:   k.Name,
		Type:   fmt.Sprintf("0x%02X", k.Tag()),
		Length: k.Schema.Length(),
	}
	for _, f := range k.Schema.Fields() {
		info.Fields = append(info.Fields, FieldInfo{
			Name:   f.Name,
			Begin:  f.Begin,
			Size:   f.Size,
			Scale:  f.Scale,
			Signed: f.Signed,
		})
	}
	return info
}

// readFrame reads a frame from the request body: raw bytes for
// application/octet-stream, hex text otherwise.
func readFrame(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/octet-stream") {
		if len(body) == 0 {
			return nil, freed.ErrEmptyFrame
		}
		return body, nil
	}
	return freed.ParseHex(string(body))
}

func queryBool(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter %q", name, raw)
	}
	return v, nil
}

// DecodeFrame decodes frame against the kind named by its first byte. raw adds
// the unscaled field integers; verify checks the checksum over the schema
// length without failing the decode.
func DecodeFrame(frame []byte, verify, raw bool) (*DecodeResponse, error) {
	if len(frame) == 0 {
		return nil, freed.ErrEmptyFrame
	}
	kind, ok := freed.Lookup(frame[0])
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", freed.ErrUnknownType, frame[0])
	}

	values, err := kind.Schema.Decode(frame)
	if err != nil {
		return nil, err
	}
	resp := &DecodeResponse{
		Kind:   kind.Name,
		Type:   fmt.Sprintf("0x%02X", kind.Tag()),
		Length: len(frame),
		Fields: values,
	}
	if raw {
		if resp.Raw, err = kind.Schema.Parse(frame); err != nil {
			return nil, err
		}
	}
	if verify {
		// Bytes past the schema length are not part of the message.
		valid := codec.Verify(frame[:kind.Schema.Length()]) == nil
		resp.ChecksumValid = &valid
	}
	return resp, nil
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	verify, err := queryBool(r, "verify", false)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	raw, err := queryBool(r, "raw", false)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	frame, err := readFrame(r)
	if err != nil {
		s.metrics.RecordCodecOperation("decode", "unknown", false)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := DecodeFrame(frame, verify, raw)
	if err != nil {
		s.metrics.RecordCodecOperation("decode", kindLabel(frame), false)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.RecordCodecOperation("decode", resp.Kind, true)
	sendSuccess(w, resp)
}

func kindLabel(frame []byte) string {
	if len(frame) > 0 {
		if k, ok := freed.Lookup(frame[0]); ok {
			return k.Name
		}
	}
	return "unknown"
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	kind, ok := freed.LookupName(chi.URLParam(r, "kind"))
	if !ok {
		sendError(w, fmt.Sprintf("Unknown message kind %q", chi.URLParam(r, "kind")), http.StatusNotFound)
		return
	}
	strict, err := queryBool(r, "strict", s.config.Strict)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var overrides codec.Values
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		sendError(w, fmt.Sprintf("Invalid JSON body: %v", err), http.StatusBadRequest)
		return
	}

	values := kind.Defaults()
	for name, v := range overrides {
		if _, known := kind.Schema.Field(name); !known || name == freed.FieldChecksum {
			sendError(w, fmt.Sprintf("Unknown field %q for %s", name, kind.Name), http.StatusBadRequest)
			return
		}
		values[name] = v
	}

	var degraded []string
	c := codec.NewCodec(
		codec.WithStrict(strict),
		codec.WithObserver(codec.ObserverFunc(func(schema, field string, err error) {
			degraded = append(degraded, field)
			s.metrics.FieldDegraded(schema, field, err)
			s.log.Warn().Err(err).Str("kind", schema).Str("field", field).Msg("field zeroed on encode")
		})),
	)

	frame, err := c.Encode(kind.Schema, values)
	if err != nil {
		s.metrics.RecordCodecOperation("encode", kind.Name, false)
		status := http.StatusBadRequest
		if errors.Is(err, codec.ErrOverflow) {
			status = http.StatusUnprocessableEntity
		}
		sendError(w, err.Error(), status)
		return
	}

	s.metrics.RecordCodecOperation("encode", kind.Name, true)
	sendSuccess(w, EncodeResponse{
		Kind:     kind.Name,
		Frame:    freed.FormatHex(frame),
		Length:   len(frame),
		Degraded: degraded,
	})
}

func (s *Server) handleChecksum(w http.ResponseWriter, r *http.Request) {
	data, err := readFrame(r)
	if err != nil {
		s.metrics.RecordCodecOperation("checksum", "unknown", false)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sum := codec.Checksum(data)
	s.metrics.RecordCodecOperation("checksum", kindLabel(data), true)
	sendSuccess(w, ChecksumResponse{
		Checksum: fmt.Sprintf("0x%02X", sum),
		Value:    sum,
	})
}

func captureResponse(e *capture.Entry) CaptureResponse {
	resp := CaptureResponse{
		ID:       e.ID.String(),
		Captured: e.Captured,
		Frame:    freed.FormatHex(e.Frame),
	}
	if decoded, err := DecodeFrame(e.Frame, true, false); err == nil {
		resp.Decoded = decoded
	}
	return resp
}

func (s *Server) handleCreateCapture(w http.ResponseWriter, r *http.Request) {
	frame, err := readFrame(r)
	if err != nil {
		s.metrics.RecordCaptureOperation("put", false)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.store.Put(frame)
	if err != nil {
		s.metrics.RecordCaptureOperation("put", false)
		s.log.Error().Err(err).Msg("failed to store capture")
		sendError(w, "Failed to store frame", http.StatusInternalServerError)
		return
	}
	s.metrics.RecordCaptureOperation("put", true)
	sendSuccess(w, captureResponse(&capture.Entry{ID: id, Captured: id.Time(), Frame: frame}))
}

func (s *Server) handleListCaptures(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			sendError(w, fmt.Sprintf("invalid limit parameter %q", raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.store.List(limit)
	if err != nil {
		s.metrics.RecordCaptureOperation("list", false)
		s.log.Error().Err(err).Msg("failed to list captures")
		sendError(w, "Failed to list captures", http.StatusInternalServerError)
		return
	}
	s.metrics.RecordCaptureOperation("list", true)

	resp := make([]CaptureResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, captureResponse(&entries[i]))
	}
	sendSuccess(w, resp)
}

func (s *Server) captureID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid capture id", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	id, ok := s.captureID(w, r)
	if !ok {
		return
	}

	entry, err := s.store.Get(id)
	if errors.Is(err, capture.ErrNotFound) {
		s.metrics.RecordCaptureOperation("get", false)
		sendError(w, "Capture not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.metrics.RecordCaptureOperation("get", false)
		s.log.Error().Err(err).Str("id", id.String()).Msg("failed to read capture")
		sendError(w, "Failed to read capture", http.StatusInternalServerError)
		return
	}
	s.metrics.RecordCaptureOperation("get", true)
	sendSuccess(w, captureResponse(entry))
}

func (s *Server) handleDeleteCapture(w http.ResponseWriter, r *http.Request) {
	id, ok := s.captureID(w, r)
	if !ok {
		return
	}

	err := s.store.Delete(id)
	if errors.Is(err, capture.ErrNotFound) {
		s.metrics.RecordCaptureOperation("delete", false)
		sendError(w, "Capture not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.metrics.RecordCaptureOperation("delete", false)
		s.log.Error().Err(err).Str("id", id.String()).Msg("failed to delete capture")
		sendError(w, "Failed to delete capture", http.StatusInternalServerError)
		return
	}
	s.metrics.RecordCaptureOperation("delete", true)
	sendSuccess(w, map[string]string{"status": "deleted"})
}
