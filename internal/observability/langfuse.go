package observability

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"
	"github.com/ipcctiled/transform-api/internal/config"
	"github.com/ipcctiled/transform-api/internal/llm"
)

// GenerationRecord is one provider call as reported to Langfuse
type GenerationRecord struct {
	Name     string
	Provider string
	Model    string
	Input    string
	Output   string
	Usage    llm.Usage
	Start    time.Time
	End      time.Time
	Err      error
	Metadata map[string]any
}

// langfuseAPI is the part of the Langfuse SDK the client uses
type langfuseAPI interface {
	Trace(t *model.Trace) (*model.Trace, error)
	Generation(g *model.Generation, parentID *string) (*model.Generation, error)
	GenerationEnd(g *model.Generation) (*model.Generation, error)
	Flush(ctx context.Context)
}

// LangfuseClient wraps the Langfuse client with our configuration
type LangfuseClient struct {
	client    langfuseAPI
	enabled   bool
	closeOnce sync.Once
}

// NewLangfuse creates a client, disabled unless LANGFUSE_ENABLED and a secret key are set.
func NewLangfuse(ctx context.Context, cfg *config.Config) *LangfuseClient {
	if !cfg.LangfuseEnabled || cfg.LangfuseSecretKey == "" {
		log.Println("⚠️  Langfuse not configured (LANGFUSE_ENABLED=false or LANGFUSE_SECRET_KEY not set)")
		return &LangfuseClient{enabled: false}
	}

	exportCredentials(cfg)
	lf := langfuse.New(ctx)
	log.Printf("✅ Langfuse initialized (host: %s)", cfg.LangfuseHost)
	return &LangfuseClient{client: lf, enabled: true}
}

// exportCredentials copies settings that came from the config file into the environment.
// The SDK reads only LANGFUSE_HOST, LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY. Variables
// already set are left alone.
func exportCredentials(cfg *config.Config) {
	for key, value := range map[string]string{
		"LANGFUSE_HOST":       cfg.LangfuseHost,
		"LANGFUSE_PUBLIC_KEY": cfg.LangfusePublicKey,
		"LANGFUSE_SECRET_KEY": cfg.LangfuseSecretKey,
	} {
		if value == "" || os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			log.Printf("⚠️  Failed to export %s: %v", key, err)
		}
	}
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// RecordGeneration queues one trace holding one generation. The SDK delivers queued events on
// its own ticker. Failures are logged, never returned.
func (c *LangfuseClient) RecordGeneration(ctx context.Context, rec GenerationRecord) {
	if !c.IsEnabled() {
		return
	}

	trace, err := c.client.Trace(&model.Trace{
		Name:     rec.Name,
		Metadata: rec.Metadata,
	})
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse trace: %v", err)
		return
	}

	start := rec.Start
	gen, err := c.client.Generation(&model.Generation{
		TraceID:   trace.ID,
		Name:      rec.Name,
		Model:     rec.Model,
		StartTime: &start,
		Input:     rec.Input,
		Metadata:  generationMetadata(rec),
	}, nil)
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse generation: %v", err)
		return
	}

	end := rec.End
	gen.EndTime = &end
	if rec.Output != "" {
		gen.Output = rec.Output
	}
	gen.Usage = toUsage(rec)
	if rec.Err != nil {
		gen.Level = model.ObservationLevel("ERROR")
		gen.StatusMessage = rec.Err.Error()
	}

	if _, err := c.client.GenerationEnd(gen); err != nil {
		log.Printf("⚠️  Failed to end Langfuse generation: %v", err)
	}
}

// Close delivers the events still queued. The SDK stops dispatching after its first flush, so
// Close runs once, at shutdown.
func (c *LangfuseClient) Close(ctx context.Context) {
	if !c.IsEnabled() {
		return
	}
	c.closeOnce.Do(func() {
		c.client.Flush(ctx)
	})
}

func generationMetadata(rec GenerationRecord) map[string]any {
	md := map[string]any{
		"provider": rec.Provider,
		"model":    rec.Model,
		"cost_usd": CalculateCost(rec.Provider, rec.Model, rec.Usage),
	}
	for k, v := range rec.Metadata {
		md[k] = v
	}
	return md
}

// toUsage converts provider token counts to Langfuse usage
func toUsage(rec GenerationRecord) model.Usage {
	return model.Usage{
		Input:     int(rec.Usage.InputTokens),
		Output:    int(rec.Usage.OutputTokens),
		Total:     int(rec.Usage.TotalTokens),
		Unit:      model.ModelUsageUnitTokens,
		TotalCost: CalculateCost(rec.Provider, rec.Model, rec.Usage),
	}
}
