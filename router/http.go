package router

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"
)

type pathsResponse struct {
	Src   string
	Dst   string
	Paths [][]string
}

func (c *Controller) HandleHTTP(muxRouter *mux.Router) {

	muxRouter.Methods("GET").Path("/paths").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		src, err := net.ParseMAC(r.FormValue("src"))
		if err != nil {
			http.Error(w, fmt.Sprint("invalid src: ", err), http.StatusBadRequest)
			return
		}
		dst, err := net.ParseMAC(r.FormValue("dst"))
		if err != nil {
			http.Error(w, fmt.Sprint("invalid dst: ", err), http.StatusBadRequest)
			return
		}
		resp := pathsResponse{Src: src.String(), Dst: dst.String(), Paths: [][]string{}}
		for _, path := range c.Paths(src, dst) {
			hops := make([]string, len(path))
			for i, dpid := range path {
				hops[i] = dpid.String()
			}
			resp.Paths = append(resp.Paths, hops)
		}
		writeJSON(w, resp)
	})

	muxRouter.Methods("GET").Path("/topology").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, c.graph)
	})

	muxRouter.Methods("GET").Path("/macs").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, c.macs)
	})

}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnln("[http] encoding response:", err)
	}
}
