package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func TestHTTPPaths(t *testing.T) {
	c, _ := newLineController(t)
	c.Macs().Learn(dpA, mac1, 5)
	c.Macs().Learn(dpC, mac2, 7)

	muxRouter := mux.NewRouter()
	c.HandleHTTP(muxRouter)

	rec := httptest.NewRecorder()
	muxRouter.ServeHTTP(rec, httptest.NewRequest("GET", "/paths?src=00:00:00:00:00:01&dst=00:00:00:00:00:02", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pathsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, [][]string{{"000000000000000a", "000000000000000b", "000000000000000c"}}, resp.Paths)

	rec = httptest.NewRecorder()
	muxRouter.ServeHTTP(rec, httptest.NewRequest("GET", "/paths?src=00:00:00:00:00:01&dst=00:00:00:00:00:03", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"Src":"00:00:00:00:00:01","Dst":"00:00:00:00:00:03","Paths":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	muxRouter.ServeHTTP(rec, httptest.NewRequest("GET", "/paths?src=bogus&dst=00:00:00:00:00:02", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPTopology(t *testing.T) {
	c, _ := newLineController(t)
	c.Macs().Learn(dpA, mac1, 5)

	muxRouter := mux.NewRouter()
	c.HandleHTTP(muxRouter)

	rec := httptest.NewRecorder()
	muxRouter.ServeHTTP(rec, httptest.NewRequest("GET", "/topology", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"Dpid":"000000000000000c","Port":2`)

	rec = httptest.NewRecorder()
	muxRouter.ServeHTTP(rec, httptest.NewRequest("GET", "/macs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"Mac":"00:00:00:00:00:01"`)
}

func TestNewStatus(t *testing.T) {
	c, _ := newLineController(t)
	require.NoError(t, c.HandleEvent(packetIn(t, dpA, 5, mac1, mac2)))

	status := NewStatus(c)
	require.Len(t, status.Switches, 3)
	require.Equal(t, []LinkStatus{
		{"000000000000000a:1", "000000000000000b:1"},
		{"000000000000000b:2", "000000000000000c:1"},
	}, status.Links)
	require.Len(t, status.MACs, 1)
	require.Equal(t, "000000000000000a", status.MACs[0].Dpid)
	require.Equal(t, uint64(1), status.Stats.PacketIns)
}
