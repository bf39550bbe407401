// Package monitoring serves a bus of IPIF devices over HTTP so that
// self-tests can be triggered and device state inspected while the process
// runs.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/ipif/bus"
	"github.com/sarchlab/ipif/hooking"
	"github.com/sarchlab/ipif/regs"
	"github.com/sarchlab/ipif/selftest"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor turns a bus of devices into a server. Self-tests started through
// the server hold a per-device lock, so two requests never test the same
// device at the same time.
type Monitor struct {
	bus        *bus.Bus
	portNumber int
	logger     *slog.Logger
	testHooks  []hooking.Hook

	deviceLocksLock sync.Mutex
	deviceLocks     map[string]*sync.Mutex

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor over b.
func NewMonitor(b *bus.Bus) *Monitor {
	return &Monitor{
		bus:         b,
		logger:      slog.Default(),
		deviceLocks: make(map[string]*sync.Mutex),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		m.logger.Warn("port number not allowed, using a random port",
			"port", portNumber)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger used for server events.
func (m *Monitor) WithLogger(logger *slog.Logger) *Monitor {
	m.logger = logger
	return m
}

// RegisterTestHook attaches h to every tester the monitor creates. Tests on
// different devices run concurrently, so h must be safe for concurrent use.
func (m *Monitor) RegisterTestHook(h hooking.Hook) {
	m.testHooks = append(m.testHooks, h)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := newProgressBar(name, total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the progress list.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the HTTP routes of the monitor.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/devices", m.listDevices).Methods(http.MethodGet)
	r.HandleFunc("/api/device/{name}", m.deviceDetails).
		Methods(http.MethodGet)
	r.HandleFunc("/api/field/{json}", m.listFieldValue).
		Methods(http.MethodGet)
	r.HandleFunc("/api/selftest", m.selfTestAll).Methods(http.MethodPost)
	r.HandleFunc("/api/selftest/{name}", m.selfTest).
		Methods(http.MethodPost)
	r.HandleFunc("/api/progress", m.listProgressBars).
		Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts serving in the background and returns the URL of the
// server.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.logger.Info("monitoring IPIF devices", "url", url)

	go func() {
		err := http.Serve(listener, m.Router())
		dieOnErr(err)
	}()

	return url
}

type deviceRsp struct {
	Name string `json:"name"`
	Base string `json:"base"`
	Size uint64 `json:"size"`
}

func (m *Monitor) listDevices(w http.ResponseWriter, _ *http.Request) {
	mappings := m.bus.Devices()

	rsp := make([]deviceRsp, 0, len(mappings))
	for _, mapping := range mappings {
		rsp = append(rsp, deviceRsp{
			Name: mapping.Device.Name(),
			Base: fmt.Sprintf("0x%x", mapping.Base),
			Size: mapping.Device.Size(),
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) deviceDetails(w http.ResponseWriter, r *http.Request) {
	mapping, ok := m.findDeviceOr404(w, mux.Vars(r)["name"])
	if !ok {
		return
	}

	unlock := m.lockDevice(mapping.Device.Name())
	defer unlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(mapping.Device)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)
	dieOnErr(err)
}

type fieldReq struct {
	DeviceName string `json:"device_name,omitempty"`
	FieldName  string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	mapping, ok := m.findDeviceOr404(w, req.DeviceName)
	if !ok {
		return
	}

	unlock := m.lockDevice(mapping.Device.Name())
	defer unlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(mapping.Device)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type selfTestRsp struct {
	Device         string `json:"device"`
	Base           string `json:"base"`
	Width          int    `json:"width"`
	Status         string `json:"status"`
	Code           int    `json:"code"`
	ResetOnFailure bool   `json:"reset_on_failure"`
}

func (m *Monitor) selfTest(w http.ResponseWriter, r *http.Request) {
	mapping, ok := m.findDeviceOr404(w, mux.Vars(r)["name"])
	if !ok {
		return
	}

	width, resetOnFailure, err := selfTestParseParams(r, mapping.Device)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, m.runSelfTest(mapping, width, resetOnFailure))
}

// selfTestAll tests every device in parallel, one goroutine per device.
func (m *Monitor) selfTestAll(w http.ResponseWriter, r *http.Request) {
	_, resetOnFailure, err := selfTestParseParams(r, nil)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	mappings := m.bus.Devices()
	bar := m.CreateProgressBar("self-test", uint64(len(mappings)))
	defer m.CompleteProgressBar(bar)

	rsp := make([]selfTestRsp, len(mappings))

	var wg sync.WaitGroup
	for i, mapping := range mappings {
		wg.Add(1)
		bar.Start(1)

		go func() {
			defer wg.Done()

			rsp[i] = m.runSelfTest(mapping, deviceWidth(mapping.Device),
				resetOnFailure)
			bar.Finish(1)
		}()
	}
	wg.Wait()

	writeJSON(w, rsp)
}

func (m *Monitor) runSelfTest(
	mapping bus.Mapping,
	width int,
	resetOnFailure bool,
) selfTestRsp {
	name := mapping.Device.Name()

	unlock := m.lockDevice(name)
	defer unlock()

	tester := selftest.NewTester(name + ".SelfTest")
	for _, h := range m.testHooks {
		tester.AcceptHook(h)
	}

	registers := regs.OnBus(m.bus, mapping.Base)

	status := tester.Run(registers, width)
	if !status.OK() && resetOnFailure {
		registers.Reset()
	}

	m.logger.Info("self-test finished",
		"device", name, "width", width, "status", status.String())

	return selfTestRsp{
		Device:         name,
		Base:           fmt.Sprintf("0x%x", mapping.Base),
		Width:          width,
		Status:         status.String(),
		Code:           int(status),
		ResetOnFailure: resetOnFailure && !status.OK(),
	}
}

type widthReporter interface {
	IPWidth() int
}

func deviceWidth(dev bus.Device) int {
	if d, ok := dev.(widthReporter); ok {
		return d.IPWidth()
	}

	return regs.MaxInterruptWidth
}

func selfTestParseParams(
	r *http.Request,
	dev bus.Device,
) (width int, resetOnFailure bool, err error) {
	if dev != nil {
		width = deviceWidth(dev)
	}

	widthStr := r.URL.Query().Get("width")
	if widthStr != "" {
		width, err = strconv.Atoi(widthStr)
		if err != nil {
			return 0, false, err
		}
	}

	if width < 0 || width > regs.MaxInterruptWidth {
		return 0, false, fmt.Errorf(
			"width %d is out of range [0, %d]", width, regs.MaxInterruptWidth)
	}

	resetStr := r.URL.Query().Get("reset_on_failure")
	if resetStr != "" {
		resetOnFailure, err = strconv.ParseBool(resetStr)
		if err != nil {
			return 0, false, err
		}
	}

	return width, resetOnFailure, nil
}

func (m *Monitor) lockDevice(name string) func() {
	m.deviceLocksLock.Lock()
	l, ok := m.deviceLocks[name]
	if !ok {
		l = &sync.Mutex{}
		m.deviceLocks[name] = l
	}
	m.deviceLocksLock.Unlock()

	l.Lock()

	return l.Unlock
}

func (m *Monitor) findDeviceOr404(
	w http.ResponseWriter,
	name string,
) (bus.Mapping, bool) {
	mapping, ok := m.bus.Lookup(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Device not found"))
		dieOnErr(err)
	}

	return mapping, ok
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.Progress())
}

// Progress returns a copy of every progress bar still shown.
func (m *Monitor) Progress() []Progress {
	m.progressBarsLock.Lock()
	bars := append([]*ProgressBar(nil), m.progressBars...)
	m.progressBarsLock.Unlock()

	progress := make([]Progress, 0, len(bars))
	for _, b := range bars {
		progress = append(progress, b.Snapshot())
	}

	return progress
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		httpError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func httpError(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	fmt.Fprintf(w, "Error: %s", err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
