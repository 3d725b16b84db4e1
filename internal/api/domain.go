package api

import (
	"github.com/Ashwini-Khunte/receipt-tracker/internal/extraction"
	"github.com/Ashwini-Khunte/receipt-tracker/internal/receipts"
	"github.com/Ashwini-Khunte/receipt-tracker/pipeline"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Receipts   receipts.System
	Extraction extraction.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	receiptsSystem := receipts.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	cfg := runtime.Config
	pipelineRuntime := &pipeline.Runtime{
		Scanner:    pipeline.NewInferer(cfg.Agents.Scanning),
		Summarizer: pipeline.NewInferer(cfg.Agents.Database),
		Tool:       cfg.Pipeline.ToolBackoff(),
		Run:        cfg.Pipeline.RunBackoff(),
		MaxSteps:   cfg.Pipeline.MaxSteps,
	}

	extractionSystem := extraction.New(
		pipelineRuntime,
		receiptsSystem,
		runtime.Usage,
		runtime.Lifecycle,
		runtime.Logger,
	)

	return &Domain{
		Receipts:   receiptsSystem,
		Extraction: extractionSystem,
	}
}
