package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"text/template"

	"github.com/gorilla/mux"

	"github.com/weaveworks/ofpath/common"
	"github.com/weaveworks/ofpath/router"
)

var rootTemplate = template.New("root").Funcs(map[string]interface{}{
	"countPorts": func(switches []router.SwitchStatus) int {
		count := 0
		for _, sw := range switches {
			count += len(sw.Ports)
		}
		return count
	},
	"printPacketCounts": func(stats router.Stats) string {
		return printCounts(map[string]uint64{
			"unicast":     stats.Unicasts,
			"flooded":     stats.Floods,
			"undecodable": stats.DecodeErrors,
		}, []string{"unicast", "flooded", "undecodable"})
	},
})

// Print non-zero counts in a specified order
func printCounts(counts map[string]uint64, keys []string) string {
	var stringCounts []string
	for _, key := range keys {
		if count := counts[key]; count > 0 {
			stringCounts = append(stringCounts, fmt.Sprintf("%d %s", count, key))
		}
	}
	return strings.Join(stringCounts, ", ")
}

// Strip escaped newlines from template
func escape(template string) string {
	return strings.Replace(template, "\\\n", "", -1)
}

// Define a named template panicking on error
func defTemplate(name string, text string) *template.Template {
	return template.Must(rootTemplate.New(name).Parse(escape(text)))
}

var statusTemplate = defTemplate("status", `\
         Version: {{.Version}}

        Switches: {{len .Controller.Switches}} ({{countPorts .Controller.Switches}} ports)
           Links: {{len .Controller.Links}}{{with .Controller.Stats.LinksDropped}} ({{.}} dropped){{end}}
            MACs: {{len .Controller.MACs}}
      Packet-ins: {{.Controller.Stats.PacketIns}}{{with printPacketCounts .Controller.Stats}} ({{.}}){{end}}
 Paths installed: {{.Controller.Stats.PathsInstalled}} ({{.Controller.Stats.FlowRulesSent}} flow rules)
     Send errors: {{.Controller.Stats.SendErrors}}
`)

var switchesTemplate = defTemplate("switches", `\
{{range .Controller.Switches}}\
{{.Dpid}}
{{range .Ports}}\
   {{printf "%-5v" .PortNo}} {{printf "%-17v" .HwAddr}} {{.Name}}
{{end}}\
{{end}}\
`)

var linksTemplate = defTemplate("links", `\
{{range .Controller.Links}}{{.Src}} <-> {{.Dst}}
{{end}}\
`)

var macsTemplate = defTemplate("macs", `\
{{range .Controller.MACs}}\
{{.Mac}} {{.Dpid}} {{printf "%-5v" .Port}} {{.LastSeen.Format "2006-01-02T15:04:05Z07:00"}}
{{end}}\
`)

type OfpathStatus struct {
	Version    string
	Controller *router.Status
}

func HandleHTTP(muxRouter *mux.Router, version string, controller *router.Controller) {
	status := func() OfpathStatus {
		return OfpathStatus{version, router.NewStatus(controller)}
	}
	muxRouter.Methods("GET").Path("/report").Headers("Accept", "application/json").HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			json, _ := json.MarshalIndent(status(), "", "    ")
			w.Header().Set("Content-Type", "application/json")
			w.Write(json)
		})

	muxRouter.Methods("GET").Path("/report").Queries("format", "{format}").HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			formatTemplate, err := template.New("format").Parse(mux.Vars(r)["format"])
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if err := formatTemplate.Execute(w, status()); err != nil {
				http.Error(w, "error during template execution", http.StatusInternalServerError)
				common.Log.Error(err)
			}
		})

	defHandler := func(path string, template *template.Template) {
		muxRouter.Methods("GET").Path(path).HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				if err := template.Execute(w, status()); err != nil {
					http.Error(w, "error during template execution", http.StatusInternalServerError)
					common.Log.Error(err)
				}
			})
	}

	defHandler("/status", statusTemplate)
	defHandler("/status/switches", switchesTemplate)
	defHandler("/status/links", linksTemplate)
	defHandler("/status/macs", macsTemplate)

}
