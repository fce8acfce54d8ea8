package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ssargent/freed/pkg/capture"
	"github.com/ssargent/freed/pkg/codec"
	"github.com/ssargent/freed/pkg/freed"
	"github.com/ssargent/freed/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

type testServer struct {
	handler http.Handler
	reg     *prometheus.Registry
}

func setupTestServer(t *testing.T, strict bool, withStore bool) *testServer {
	t.Helper()

	var store CaptureStore
	if withStore {
		s, err := capture.Open(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		store = s
	}

	reg := prometheus.NewRegistry()
	server := NewServer(store, ServerConfig{APIKey: testAPIKey, Strict: strict}, NewMetrics(reg), logging.Nop())
	return &testServer{handler: NewRouter(server, reg), reg: reg}
}

func (ts *testServer) do(t *testing.T, method, path, contentType string, body []byte) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("X-API-Key", testAPIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	var resp APIResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// decodeData re-marshals the generic data payload into out.
func decodeData(t *testing.T, resp APIResponse, out interface{}) {
	t.Helper()
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func poseFrame(t *testing.T, p *freed.Pose) []byte {
	t.Helper()
	buf, err := p.MarshalBinary()
	require.NoError(t, err)
	return buf
}

func TestServer_Health(t *testing.T) {
	ts := setupTestServer(t, false, false)

	w, resp := ts.do(t, "GET", "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestServer_RequiresAPIKey(t *testing.T) {
	ts := setupTestServer(t, false, false)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_Schemas(t *testing.T) {
	ts := setupTestServer(t, false, false)

	w, resp := ts.do(t, "GET", "/api/v1/schemas", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var schemas []SchemaInfo
	decodeData(t, resp, &schemas)
	require.Len(t, schemas, 2)
	assert.Equal(t, "pose", schemas[0].Name)
	assert.Equal(t, "0xD1", schemas[0].Type)
	assert.Equal(t, 29, schemas[0].Length)
	assert.Equal(t, FieldInfo{Name: "pan", Begin: 2, Size: 3, Scale: 32768, Signed: true}, schemas[0].Fields[2])
	assert.Equal(t, "calibration", schemas[1].Name)
}

func TestServer_Decode(t *testing.T) {
	ts := setupTestServer(t, false, false)
	frame := poseFrame(t, &freed.Pose{Cam: 1, Pan: 0.5, Zoom: 1234})

	t.Run("hex body", func(t *testing.T) {
		w, resp := ts.do(t, "POST", "/api/v1/decode?verify=true", "text/plain", []byte(freed.FormatHex(frame)))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var out DecodeResponse
		decodeData(t, resp, &out)
		assert.Equal(t, "pose", out.Kind)
		assert.Equal(t, "0xD1", out.Type)
		assert.Equal(t, 0.5, out.Fields["pan"].Float64())
		assert.Equal(t, int64(1234), out.Fields["zoom"].Int64())
		require.NotNil(t, out.ChecksumValid)
		assert.True(t, *out.ChecksumValid)
		assert.Nil(t, out.Raw)
	})

	t.Run("octet stream body with raw fields", func(t *testing.T) {
		w, resp := ts.do(t, "POST", "/api/v1/decode?raw=true", "application/octet-stream", frame)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var out DecodeResponse
		decodeData(t, resp, &out)
		assert.Equal(t, int64(16384), out.Raw["pan"])
		assert.Nil(t, out.ChecksumValid)
	})

	t.Run("bad checksum is reported not rejected", func(t *testing.T) {
		corrupt := append([]byte(nil), frame...)
		corrupt[28]++

		w, resp := ts.do(t, "POST", "/api/v1/decode?verify=true", "application/octet-stream", corrupt)
		require.Equal(t, http.StatusOK, w.Code)

		var out DecodeResponse
		decodeData(t, resp, &out)
		require.NotNil(t, out.ChecksumValid)
		assert.False(t, *out.ChecksumValid)
	})

	t.Run("short frame", func(t *testing.T) {
		w, resp := ts.do(t, "POST", "/api/v1/decode", "application/octet-stream", frame[:10])
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "out of bounds")
	})

	t.Run("unknown type", func(t *testing.T) {
		w, resp := ts.do(t, "POST", "/api/v1/decode", "text/plain", []byte("EE0000"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp.Error, "unknown message type")
	})

	t.Run("invalid hex", func(t *testing.T) {
		w, _ := ts.do(t, "POST", "/api/v1/decode", "text/plain", []byte("not hex"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid verify flag", func(t *testing.T) {
		w, _ := ts.do(t, "POST", "/api/v1/decode?verify=maybe", "text/plain", []byte("D1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestServer_Encode(t *testing.T) {
	t.Run("pose scenario", func(t *testing.T) {
		ts := setupTestServer(t, false, false)
		body := []byte(`{"cam":1,"pan":0.5}`)

		w, resp := ts.do(t, "POST", "/api/v1/encode/pose", "application/json", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var out EncodeResponse
		decodeData(t, resp, &out)
		assert.Equal(t, "pose", out.Kind)
		assert.Equal(t, 29, out.Length)
		assert.Empty(t, out.Degraded)

		frame, err := freed.ParseHex(out.Frame)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xD1, 0x01, 0x00, 0x40, 0x00}, frame[:5])
		assert.Equal(t, byte(0x2E), frame[28])
	})

	t.Run("defaults apply", func(t *testing.T) {
		ts := setupTestServer(t, false, false)

		w, resp := ts.do(t, "POST", "/api/v1/encode/da", "application/json", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var out EncodeResponse
		decodeData(t, resp, &out)
		frame, err := freed.ParseHex(out.Frame)
		require.NoError(t, err)
		c := freed.NewCalibration()
		require.NoError(t, c.UnmarshalBinary(frame))
		assert.Equal(t, 1.0, c.ScaleX)
		assert.Equal(t, uint8(255), c.Cam)
	})

	t.Run("overflow degrades", func(t *testing.T) {
		ts := setupTestServer(t, false, false)

		w, resp := ts.do(t, "POST", "/api/v1/encode/pose", "application/json", []byte(`{"zoom":16777216}`))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var out EncodeResponse
		decodeData(t, resp, &out)
		assert.Equal(t, []string{"zoom"}, out.Degraded)

		frame, err := freed.ParseHex(out.Frame)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0}, frame[20:23])
		assert.NoError(t, codec.Verify(frame))

		count := testCounterValue(t, ts.reg, "freed_codec_degraded_fields_total")
		assert.Equal(t, 1.0, count)
	})

	t.Run("strict per request", func(t *testing.T) {
		ts := setupTestServer(t, false, false)

		w, resp := ts.do(t, "POST", "/api/v1/encode/pose?strict=true", "application/json", []byte(`{"zoom":16777216}`))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, resp.Error, "zoom")
	})

	t.Run("strict by config", func(t *testing.T) {
		ts := setupTestServer(t, true, false)

		w, _ := ts.do(t, "POST", "/api/v1/encode/pose", "application/json", []byte(`{"user":70000}`))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w, _ = ts.do(t, "POST", "/api/v1/encode/pose?strict=false", "application/json", []byte(`{"user":70000}`))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown kind", func(t *testing.T) {
		ts := setupTestServer(t, false, false)

		w, _ := ts.do(t, "POST", "/api/v1/encode/lens", "application/json", []byte(`{}`))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		ts := setupTestServer(t, false, false)

		w, resp := ts.do(t, "POST", "/api/v1/encode/pose", "application/json", []byte(`{"iris":2}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp.Error, "iris")
	})

	t.Run("checksum is derived", func(t *testing.T) {
		ts := setupTestServer(t, false, false)

		w, _ := ts.do(t, "POST", "/api/v1/encode/pose", "application/json", []byte(`{"checksum":1}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		ts := setupTestServer(t, false, false)

		w, _ := ts.do(t, "POST", "/api/v1/encode/pose", "application/json", []byte(`{"pan":"left"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestServer_Checksum(t *testing.T) {
	ts := setupTestServer(t, false, false)

	w, resp := ts.do(t, "POST", "/api/v1/checksum", "text/plain", []byte("D1 01 40"))
	require.Equal(t, http.StatusOK, w.Code)

	var out ChecksumResponse
	decodeData(t, resp, &out)
	assert.Equal(t, "0x2E", out.Checksum)
	assert.Equal(t, byte(0x2E), out.Value)
}

func TestServer_Captures(t *testing.T) {
	ts := setupTestServer(t, false, true)
	frame := poseFrame(t, &freed.Pose{Cam: 3, Tilt: -10})

	w, resp := ts.do(t, "POST", "/api/v1/captures", "application/octet-stream", frame)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created CaptureResponse
	decodeData(t, resp, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, freed.FormatHex(frame), created.Frame)
	require.NotNil(t, created.Decoded)
	assert.Equal(t, "pose", created.Decoded.Kind)

	w, resp = ts.do(t, "GET", "/api/v1/captures/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got CaptureResponse
	decodeData(t, resp, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, -10.0, got.Decoded.Fields["tilt"].Float64())

	w, resp = ts.do(t, "GET", "/api/v1/captures?limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []CaptureResponse
	decodeData(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	w, _ = ts.do(t, "DELETE", "/api/v1/captures/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(t, "GET", "/api/v1/captures/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(t, "GET", "/api/v1/captures/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(t, "GET", "/api/v1/captures?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_CapturesDisabled(t *testing.T) {
	ts := setupTestServer(t, false, false)

	w, _ := ts.do(t, "GET", "/api/v1/captures", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t, false, false)
	ts.do(t, "POST", "/api/v1/checksum", "text/plain", []byte("D1"))

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "freed_codec_operations_total")
	assert.Contains(t, w.Body.String(), "freed_http_requests_total")
}

func testCounterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
