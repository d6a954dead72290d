package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchExisting_MapsDatesToIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/LogBook/GetLogBook", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.Equal(t, "sid=abc", r.Header.Get("Cookie"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "hdr-june", r.PostFormValue("logBookHeaderID"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"id":"abc-123","date":"2025-06-02T00:00:00"},
			{"id":"def-456","date":"2025-06-03T00:00:00"}
		]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	existing, err := c.FetchExisting(context.Background(), "hdr-june", "sid=abc")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"2025-06-02": "abc-123",
		"2025-06-03": "def-456",
	}, existing)
}

func TestFetchExisting_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.FetchExisting(context.Background(), "hdr", "sid=expired")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetchExisting_Unreachable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1")
	_, err := c.FetchExisting(context.Background(), "hdr", "sid")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestSubmit_SendsModelFields(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/LogBook/StudentSave", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	err := c.Submit(context.Background(), Entry{
		Date:     "2025-06-02",
		HeaderID: "hdr-june",
		ClockIn:  "09:00 am",
		ClockOut: "06:00 pm",
		Activity: "Workshop attendance",
		Descr:    "Workshop attendance",
		RemoteID: NilID,
	}, "sid=abc")
	require.NoError(t, err)

	assert.Equal(t, NilID, form["model[ID]"][0])
	assert.Equal(t, "hdr-june", form["model[LogBookHeaderID]"][0])
	assert.Equal(t, "2025-06-02T00:00:00", form["model[Date]"][0])
	assert.Equal(t, "09:00 am", form["model[ClockIn]"][0])
	assert.Equal(t, "06:00 pm", form["model[ClockOut]"][0])
	assert.Equal(t, "Workshop attendance", form["model[Activity]"][0])
	assert.Equal(t, "Workshop attendance", form["model[Description]"][0])
	_, hasFlag := form["model[flagjulyactive]"]
	assert.False(t, hasFlag, "active entries carry no flagjulyactive")
}

func TestSubmit_OffEntryCarriesFlag(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	err := c.Submit(context.Background(), Entry{
		Date:     "2025-06-07",
		HeaderID: "hdr-june",
		ClockIn:  "OFF",
		ClockOut: "OFF",
		Activity: "OFF",
		Descr:    "OFF",
		RemoteID: NilID,
		Off:      true,
	}, "sid=abc")
	require.NoError(t, err)
	assert.Equal(t, "false", form["model[flagjulyactive]"][0])
}

func TestSubmit_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad header id", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	err := c.Submit(context.Background(), Entry{Date: "2025-06-02"}, "sid")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.Contains(t, err.Error(), "2025-06-02")
	assert.Contains(t, err.Error(), "400")
}

func TestSimulated_RecordsAndFails(t *testing.T) {
	s := NewSimulated()
	s.Existing["hdr"] = map[string]string{"2025-06-02": "abc-123"}
	s.FailDates["2025-06-03"] = true

	existing, err := s.FetchExisting(context.Background(), "hdr", "")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", existing["2025-06-02"])

	require.NoError(t, s.Submit(context.Background(), Entry{Date: "2025-06-02"}, ""))
	assert.ErrorIs(t, s.Submit(context.Background(), Entry{Date: "2025-06-03"}, ""), ErrSubmitFailed)
	require.Len(t, s.Submitted, 1)
}
