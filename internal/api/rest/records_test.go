package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openioc/vmecore/internal/api/websocket"
	"github.com/openioc/vmecore/internal/config"
	"github.com/openioc/vmecore/internal/hpe1368a"
	"github.com/openioc/vmecore/internal/records"
	"github.com/openioc/vmecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubManager serves canned statuses and records the writes it saw.
type stubManager struct {
	statuses map[string]records.Status

	wroteBinary   []bool
	wroteMultiBit []uint16
	writeErr      error
}

func (m *stubManager) Records() []records.Status {
	out := make([]records.Status, 0, len(m.statuses))
	for _, s := range m.statuses {
		out = append(out, s)
	}
	return out
}

func (m *stubManager) Record(name string) (records.Status, bool) {
	s, ok := m.statuses[name]
	return s, ok
}

func (m *stubManager) WriteBinary(name string, on bool) error {
	m.wroteBinary = append(m.wroteBinary, on)
	return m.writeErr
}

func (m *stubManager) WriteMultiBit(name string, value uint16) error {
	m.wroteMultiBit = append(m.wroteMultiBit, value)
	return m.writeErr
}

func newTestServer(t *testing.T, manager *stubManager) *Server {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{}
	return NewServer(cfg, manager, logger, websocket.NewHub(logger), nil, nil)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func stubStatuses() map[string]records.Status {
	return map[string]records.Status{
		"bl:di:gate": {
			Name:  "bl:di:gate",
			Kind:  types.RecordKindBinaryIn,
			Bound: true,
		},
		"bl:do:shutter": {
			Name:  "bl:do:shutter",
			Kind:  types.RecordKindBinaryOut,
			Bound: true,
			Mask:  0x08,
		},
		"bl:sel:range": {
			Name:  "bl:sel:range",
			Kind:  types.RecordKindMultiBitOut,
			Bound: true,
			Mask:  0x70,
			Shift: 4,
		},
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, &stubManager{statuses: stubStatuses()})

	w := doRequest(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListRecords(t *testing.T) {
	s := newTestServer(t, &stubManager{statuses: stubStatuses()})

	w := doRequest(t, s, http.MethodGet, "/api/v1/records", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Records []records.Status `json:"records"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Records, 3)
}

func TestGetRecord(t *testing.T) {
	s := newTestServer(t, &stubManager{statuses: stubStatuses()})

	t.Run("found", func(t *testing.T) {
		w := doRequest(t, s, http.MethodGet, "/api/v1/records/bl:do:shutter", "")
		require.Equal(t, http.StatusOK, w.Code)

		var status records.Status
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "bl:do:shutter", status.Name)
		assert.Equal(t, uint16(0x08), status.Mask)
	})

	t.Run("missing", func(t *testing.T) {
		w := doRequest(t, s, http.MethodGet, "/api/v1/records/bl:nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestWriteRecord(t *testing.T) {
	t.Run("binary output takes a boolean", func(t *testing.T) {
		manager := &stubManager{statuses: stubStatuses()}
		s := newTestServer(t, manager)

		w := doRequest(t, s, http.MethodPut, "/api/v1/records/bl:do:shutter/value", `{"value": true}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, manager.wroteBinary, 1)
		assert.True(t, manager.wroteBinary[0])
	})

	t.Run("binary output rejects a number", func(t *testing.T) {
		manager := &stubManager{statuses: stubStatuses()}
		s := newTestServer(t, manager)

		w := doRequest(t, s, http.MethodPut, "/api/v1/records/bl:do:shutter/value", `{"value": 1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, manager.wroteBinary)
	})

	t.Run("multi-bit output takes an integer", func(t *testing.T) {
		manager := &stubManager{statuses: stubStatuses()}
		s := newTestServer(t, manager)

		w := doRequest(t, s, http.MethodPut, "/api/v1/records/bl:sel:range/value", `{"value": 5}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, manager.wroteMultiBit, 1)
		assert.Equal(t, uint16(5), manager.wroteMultiBit[0])
	})

	t.Run("multi-bit output rejects fractions and negatives", func(t *testing.T) {
		manager := &stubManager{statuses: stubStatuses()}
		s := newTestServer(t, manager)

		for _, body := range []string{`{"value": 1.5}`, `{"value": -2}`, `{"value": "3"}`, `{"value": 70000}`} {
			w := doRequest(t, s, http.MethodPut, "/api/v1/records/bl:sel:range/value", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		}
		assert.Empty(t, manager.wroteMultiBit)
	})

	t.Run("input record is not writable", func(t *testing.T) {
		s := newTestServer(t, &stubManager{statuses: stubStatuses()})

		w := doRequest(t, s, http.MethodPut, "/api/v1/records/bl:di:gate/value", `{"value": true}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing record", func(t *testing.T) {
		s := newTestServer(t, &stubManager{statuses: stubStatuses()})

		w := doRequest(t, s, http.MethodPut, "/api/v1/records/bl:nope/value", `{"value": true}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t, &stubManager{statuses: stubStatuses()})

		w := doRequest(t, s, http.MethodPut, "/api/v1/records/bl:do:shutter/value", `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWriteRecordErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unbound record conflicts", types.ErrNotBound, http.StatusConflict},
		{"not an output", types.ErrNotOutput, http.StatusBadRequest},
		{"vanished record", types.ErrRecordNotFound, http.StatusNotFound},
		{"driver fault is a bad gateway", &types.DriverError{Op: "bit write", Card: 1, Code: hpe1368a.CodeWriteFault}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := &stubManager{statuses: stubStatuses(), writeErr: tt.err}
			s := newTestServer(t, manager)

			w := doRequest(t, s, http.MethodPut, "/api/v1/records/bl:do:shutter/value", `{"value": true}`)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestWriteRecordDriverStatusPassthrough(t *testing.T) {
	manager := &stubManager{
		statuses: stubStatuses(),
		writeErr: &types.DriverError{Op: "bit write", Card: 1, Code: hpe1368a.CodeWriteFault},
	}
	s := newTestServer(t, manager)

	w := doRequest(t, s, http.MethodPut, "/api/v1/records/bl:do:shutter/value", `{"value": true}`)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "driver_error", resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(hpe1368a.CodeWriteFault), details["status"])
}
