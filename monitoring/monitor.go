// Package monitoring serves a finished simulation run over HTTP, so that
// the event log, the statistics, and the final cache state can be inspected
// from a browser or scripted against.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachetrace/cache"
	"github.com/sarchlab/cachetrace/sim"
)

// A Monitor exposes a simulation report and the cache levels that produced
// it.
type Monitor struct {
	report      *sim.Report
	levels      []*cache.Level
	portNumber  int
	openBrowser bool
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port the monitor listens on. Ports below 1000 are
// rejected and replaced with a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the report server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the served URL in the default browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterReport registers the report to serve.
func (m *Monitor) RegisterReport(r *sim.Report) {
	m.report = r
}

// RegisterLevel registers a cache level whose state can be inspected.
func (m *Monitor) RegisterLevel(l *cache.Level) {
	m.levels = append(m.levels, l)
}

// StartServer serves the report until the process exits.
func (m *Monitor) StartServer() error {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", m.listStats)
	r.HandleFunc("/api/events", m.listEvents)
	r.HandleFunc("/api/level/{name}", m.levelDetails)
	r.HandleFunc("/api/resource", m.listResources)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Serving simulation report at %s\n", url)

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return http.Serve(listener, r)
}

type statsRsp struct {
	Accesses       uint64             `json:"accesses"`
	Levels         []cache.LevelStats `json:"levels"`
	MemoryAccesses uint64             `json:"memory_accesses"`
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	rsp := statsRsp{
		Accesses:       m.report.Accesses,
		Levels:         m.report.Levels,
		MemoryAccesses: m.report.MemoryAccesses,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listEvents(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := eventsParseParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(err.Error()))
		return
	}

	events := m.report.Events
	if offset < 0 {
		offset = 0
	}
	if offset > len(events) {
		offset = len(events)
	}
	events = events[offset:]
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}

	bytes, err := json.Marshal(events)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func eventsParseParams(r *http.Request) (limit, offset int, err error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "0"
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil {
		return 0, 0, err
	}

	offsetStr := r.URL.Query().Get("offset")
	if offsetStr == "" {
		offsetStr = "0"
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil {
		return limit, 0, err
	}

	return limit, offset, nil
}

func (m *Monitor) levelDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var level *cache.Level
	for _, l := range m.levels {
		if l.Name() == name {
			level = l
		}
	}

	if level == nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Level not found"))
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(level)
	serializer.SetMaxDepth(4)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
