package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/iwvelando/strategy-simulator/internal/guidance"
	"github.com/iwvelando/strategy-simulator/internal/kpi"
	"github.com/iwvelando/strategy-simulator/internal/levers"
	"github.com/iwvelando/strategy-simulator/internal/optimizer"
	"github.com/iwvelando/strategy-simulator/internal/tutorial"
	"github.com/iwvelando/strategy-simulator/pkg/constants"
	"github.com/iwvelando/strategy-simulator/pkg/optimization"
	"github.com/iwvelando/strategy-simulator/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

// Options configures the handler. Zero values fall back to the built-in
// constants, targets and default levers.
type Options struct {
	Constants   *kpi.Constants
	Targets     *kpi.Targets
	Levers      *levers.Model
	Generator   guidance.Generator
	MaxBodySize int64
	Version     string
}

type handler struct {
	logger      *zap.Logger
	constants   kpi.Constants
	targets     kpi.Targets
	levers      levers.Model
	generator   guidance.Generator
	runner      *optimizer.Runner
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the web UI and the KPI API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handler{
		logger:      logger,
		constants:   kpi.DefaultConstants(),
		targets:     kpi.DefaultTargets(),
		levers:      levers.Defaults(),
		generator:   opts.Generator,
		maxBodySize: opts.MaxBodySize,
		version:     strings.TrimSpace(opts.Version),
	}
	if opts.Constants != nil {
		h.constants = *opts.Constants
	}
	if opts.Targets != nil {
		h.targets = *opts.Targets
	}
	if opts.Levers != nil {
		h.levers = opts.Levers.Normalize()
	}
	if h.maxBodySize <= 0 {
		h.maxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if h.version == "" {
		h.version = "dev"
	}
	h.runner = optimizer.NewRunner(logger, h.constants, h.targets)

	mux := http.NewServeMux()

	// Starting model, lever bounds and constants for the UI
	mux.HandleFunc("/api/defaults", h.handleDefaults)

	// KPI evaluation and single-lever adjustment
	mux.HandleFunc("/api/kpi", h.handleKPI)
	mux.HandleFunc("/api/levers", h.handleSetLever)

	// Target seek and sensitivity
	mux.HandleFunc("/api/seek", h.handleSeek)
	mux.HandleFunc("/api/sensitivity", h.handleSensitivity)

	// Tutorial steps and guidance
	mux.HandleFunc("/api/steps", h.handleSteps)
	mux.HandleFunc("/api/steps/{index}", h.handleStep)
	mux.HandleFunc("/api/guidance", h.handleGuidance)

	// Config serialization endpoint for downloads
	mux.HandleFunc("/api/export", h.handleExport)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type defaultsResponse struct {
	Levers    levers.Model                 `json:"levers"`
	Order     []levers.Name                `json:"order"`
	Ranges    map[levers.Name]levers.Range `json:"ranges"`
	Constants kpi.Constants                `json:"constants"`
	Targets   kpi.Targets                  `json:"targets"`
}

type kpiResponse struct {
	kpi.Report
	Display output.Display `json:"display"`
	CSV     string         `json:"csv"`
}

type leversRequest struct {
	Levers *levers.Model `json:"levers"`
}

type setLeverRequest struct {
	Levers *levers.Model `json:"levers"`
	Name   string        `json:"name"`
	Value  *float64      `json:"value"`
}

type seekRequest struct {
	Levers *levers.Model `json:"levers"`
	Lever  string        `json:"lever"`
	Goal   string        `json:"goal"`
}

type guidanceRequest struct {
	Step     int    `json:"step"`
	Strategy string `json:"strategy"`
}

type stepResponse struct {
	Index int `json:"index"`
	tutorial.Step
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, defaultsResponse{
		Levers:    h.levers,
		Order:     levers.Names(),
		Ranges:    levers.Ranges(),
		Constants: h.constants,
		Targets:   h.targets,
	})
}

func (h *handler) handleKPI(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleKPI"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	req := leversRequest{Levers: h.startingLevers()}
	if !h.decode(w, r, &req, op) {
		return
	}

	h.writeJSON(w, http.StatusOK, h.report(h.model(req.Levers)))
}

func (h *handler) handleSetLever(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSetLever"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	req := setLeverRequest{Levers: h.startingLevers()}
	if !h.decode(w, r, &req, op) {
		return
	}
	if req.Value == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing lever value", op)
		return
	}

	name, err := levers.ParseName(req.Name)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	model := h.model(req.Levers)
	if err := model.SetLever(name, *req.Value); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.logger.Debug("lever adjusted",
		zap.String("op", op),
		zap.String("lever", string(name)),
		zap.Float64("requested", *req.Value),
	)
	h.writeJSON(w, http.StatusOK, h.report(model))
}

func (h *handler) handleSeek(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSeek"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	req := seekRequest{Levers: h.startingLevers()}
	if !h.decode(w, r, &req, op) {
		return
	}

	name, err := levers.ParseName(req.Lever)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	goal, err := optimizer.ParseGoal(req.Goal)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	summary, err := h.runner.Seek(h.model(req.Levers), name, goal)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("optimizer execution failed: %v", err), op)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSensitivity"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	req := leversRequest{Levers: h.startingLevers()}
	if !h.decode(w, r, &req, op) {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string][]optimization.Sensitivity{
		"rows": h.runner.Sensitivity(h.model(req.Levers)),
	})
}

func (h *handler) handleSteps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	steps := tutorial.Steps()
	resp := make([]stepResponse, 0, len(steps))
	for i, step := range steps {
		resp = append(resp, stepResponse{Index: i, Step: step})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleStep(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStep"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid step index %q", r.PathValue("index")), op)
		return
	}

	step, err := tutorial.Lookup(index)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, stepResponse{Index: index, Step: step})
}

func (h *handler) handleGuidance(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGuidance"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req guidanceRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	step, err := tutorial.Lookup(req.Step)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}

	if h.generator == nil {
		h.respondErrorWithOp(w, http.StatusBadGateway, guidance.UserMessage, op)
		return
	}

	text, err := h.generator.GenerateGuidance(r.Context(), step, req.Strategy)
	if err != nil {
		h.logger.Warn("guidance request failed",
			zap.String("op", op),
			zap.Int("step", req.Step),
			zap.Error(err),
		)
		h.respondErrorWithOp(w, http.StatusBadGateway, guidance.UserMessage, op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"guidance": text})
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	req := leversRequest{Levers: h.startingLevers()}
	if !h.decode(w, r, &req, op) {
		return
	}

	yamlBytes, err := h.marshalOrderedConfigYAML(h.model(req.Levers))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// startingLevers returns a copy of the starting model for a request to decode
// into, so lever fields the request omits keep their starting values.
func (h *handler) startingLevers() *levers.Model {
	m := h.levers
	return &m
}

// model returns the normalized request model, or the starting model when the
// request sends "levers": null.
func (h *handler) model(m *levers.Model) levers.Model {
	if m == nil {
		return h.levers
	}
	return m.Normalize()
}

func (h *handler) report(m levers.Model) kpiResponse {
	report := kpi.Evaluate(m, h.constants, h.targets)
	return kpiResponse{
		Report:  report,
		Display: output.NewDisplay(report),
		CSV:     output.CsvString(report),
	}
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// marshalOrderedConfigYAML writes a loadable configuration file with the
// sections in the order the example config uses.
func (h *handler) marshalOrderedConfigYAML(m levers.Model) ([]byte, error) {
	ordered := orderedConfig{items: []orderedItem{
		{key: "pricing", value: h.constants.Pricing},
		{key: "operations", value: h.constants.Operations},
		{key: "targets", value: h.targets},
		{key: "levers", value: orderedLevers(m)},
	}}
	return yaml.Marshal(ordered)
}

func orderedLevers(m levers.Model) orderedConfig {
	values := m.Values()
	items := make([]orderedItem, 0, len(values))
	for _, name := range levers.Names() {
		items = append(items, orderedItem{key: string(name), value: values[name]})
	}
	return orderedConfig{items: items}
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
