package chart

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"ziwei/pkg/logger"
	"ziwei/pkg/models"
)

//go:embed iztro.js
var iztroScript string

// NodeProvider runs the iztro engine in a node subprocess. ModuleDir must
// contain node_modules/iztro.
type NodeProvider struct {
	Binary    string
	ModuleDir string
	Timeout   time.Duration
}

func NewNodeProvider(binary, moduleDir string, timeout time.Duration) *NodeProvider {
	if binary == "" {
		binary = "node"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NodeProvider{Binary: binary, ModuleDir: moduleDir, Timeout: timeout}
}

type nodeRequest struct {
	Method    string `json:"method"`
	Date      string `json:"date"`
	TimeIndex int    `json:"timeIndex"`
	Gender    string `json:"gender"`
	LeapMonth bool   `json:"isLeapMonth"`
	FixLeap   bool   `json:"fixLeap"`
	Locale    string `json:"locale"`
}

func (p *NodeProvider) BySolar(ctx context.Context, req Request) (*models.Chart, error) {
	return p.run(ctx, "bySolar", req)
}

func (p *NodeProvider) ByLunar(ctx context.Context, req Request) (*models.Chart, error) {
	return p.run(ctx, "byLunar", req)
}

func (p *NodeProvider) run(ctx context.Context, method string, req Request) (*models.Chart, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	payload, err := json.Marshal(nodeRequest{
		Method:    method,
		Date:      req.Date(),
		TimeIndex: req.TimeSlot,
		Gender:    req.Gender,
		LeapMonth: req.LeapMonth,
		FixLeap:   req.FixLeap,
		Locale:    req.Locale,
	})
	if err != nil {
		return nil, fmt.Errorf("encode engine request: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.Binary, "-e", iztroScript)
	cmd.Dir = p.ModuleDir
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 300 {
			msg = msg[:300]
		}
		logger.Named("chart").Warnw("iztro failed", "method", method, "date", req.Date(), "slot", req.TimeSlot, "err", err, "stderr", msg)
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrEngine, method, err, msg)
	}
	logger.Named("chart").Debugw("iztro ok", "method", method, "date", req.Date(), "slot", req.TimeSlot, "took", time.Since(start))

	var c models.Chart
	if err := json.Unmarshal(stdout.Bytes(), &c); err != nil {
		return nil, fmt.Errorf("%w: decode output: %v", ErrInvalidChart, err)
	}
	return &c, nil
}
