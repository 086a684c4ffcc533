// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspection-workers/internal/common/camunda"
	"inspection-workers/internal/common/config"
	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/common/observability"
	"inspection-workers/internal/pipeline"
	"inspection-workers/internal/report"

	exportjson "inspection-workers/internal/workers/reports/export-json"
	generatedocx "inspection-workers/internal/workers/reports/generate-docx"
	prefillreport "inspection-workers/internal/workers/reports/prefill-report"
)

// The workflow test needs a running Zeebe gateway and Redis, e.g.
//
//	E2E_ZEEBE_ADDRESS=localhost:26500 E2E_REDIS_ADDRESS=localhost:6379 go test ./test/e2e/...
func e2eConfig(t *testing.T) *config.Config {
	t.Helper()
	zeebeAddr := os.Getenv("E2E_ZEEBE_ADDRESS")
	redisAddr := os.Getenv("E2E_REDIS_ADDRESS")
	if zeebeAddr == "" || redisAddr == "" {
		t.Skip("E2E_ZEEBE_ADDRESS and E2E_REDIS_ADDRESS not set, skipping workflow test")
	}

	return &config.Config{
		Camunda: config.CamundaConfig{BrokerAddress: zeebeAddr, Plaintext: true, RequestTimeout: 10000},
		Redis:   config.RedisConfig{Address: redisAddr},
		Templates: config.TemplatesConfig{
			Source:       config.SourceFile,
			Directory:    filepath.Join("..", "..", "templates"),
			CacheEnabled: true,
			CacheTTL:     60000,
			FetchTimeout: 5000,
		},
		Images:  config.ImagesConfig{Concurrency: 2, FetchTimeout: 5000},
		Output:  config.OutputConfig{Sink: config.SinkFile, Directory: t.TempDir()},
		Records: config.RecordsConfig{KeyPrefix: "e2e:record:", TTL: 600000},
	}
}

func TestInspectionReportWorkflow(t *testing.T) {
	cfg := e2eConfig(t)
	log := logger.NewTestLogger(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// 1. Pipeline and Zeebe connection
	pipe, err := pipeline.New(ctx, cfg, log, pipeline.Options{UseRedis: true, RedisRetries: 3})
	require.NoError(t, err, "pipeline setup failed")
	defer pipe.Close()
	require.NotNil(t, pipe.Records)

	zeebe, err := camunda.Connect(ctx, camunda.ConfigFromApp(cfg.Camunda), log)
	require.NoError(t, err, "zeebe connection failed")
	defer zeebe.Close()

	// 2. Workers
	manager := camunda.NewWorkerManager(zeebe.GetClient(), log)
	defer manager.Stop()
	startWorkers(t, manager, cfg, pipe, log)

	// 3. Stored work order the field inspection is prefilled from
	expediente := fmt.Sprintf("NC-E2E-%d", time.Now().UnixNano())
	w := report.NewWorkOrder()
	w.ExpedienteNova = expediente
	w.Exportador = "Cítricos del Sur S.L."
	w.LugarInspeccion = "Puerto de Valencia"
	_, err = pipe.Records.Save(ctx, report.NewWorkOrderRecord(w))
	require.NoError(t, err)

	// 4. Deploy and run
	_, err = zeebe.GetClient().NewDeployResourceCommand().
		AddResourceFile(filepath.Join("testdata", "inspection-report.bpmn")).
		Send(ctx)
	require.NoError(t, err, "BPMN deployment failed")

	cmd, err := zeebe.GetClient().NewCreateInstanceCommand().
		BPMNProcessId("inspection-report").
		LatestVersion().
		VariablesFromMap(map[string]interface{}{
			"reportType":     string(report.TypeFieldInspection),
			"expedienteNova": expediente,
			"deliver":        false,
		})
	require.NoError(t, err)

	result, err := cmd.WithResult().Send(ctx)
	require.NoError(t, err, "process instance did not complete")

	var vars struct {
		ReportType       string          `json:"reportType"`
		Prefilled        bool            `json:"prefilled"`
		DocumentName     string          `json:"documentName"`
		DocumentBase64   string          `json:"documentBase64"`
		TemplateSchema   json.RawMessage `json:"templateSchema"`
		InspectionRecord json.RawMessage `json:"inspectionRecord"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.GetVariables()), &vars))

	assert.Equal(t, string(report.TypeFieldInspection), vars.ReportType)
	assert.True(t, vars.Prefilled)
	assert.Contains(t, string(vars.TemplateSchema), expediente)
	assert.Contains(t, vars.DocumentName, "Informe_Campo_"+expediente)

	doc, err := base64.StdEncoding.DecodeString(vars.DocumentBase64)
	require.NoError(t, err)
	_, err = zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	assert.NoError(t, err, "generated document is not a zip container")

	// the prefilled record was persisted under the field inspection key
	stored, err := pipe.Records.Load(ctx, report.TypeFieldInspection, expediente)
	require.NoError(t, err)
	assert.Equal(t, "Puerto de Valencia", stored.FieldInspection.LugarInspeccion)
}

func startWorkers(t *testing.T, m *camunda.WorkerManager, cfg *config.Config, pipe *pipeline.Pipeline, log logger.Logger) {
	t.Helper()
	obs := observability.NewNoop()

	prefillCfg := prefillreport.NewConfig(cfg)
	prefill, err := prefillreport.NewHandler(prefillreport.HandlerOptions{
		Config: prefillCfg, Records: pipe.Records, Observability: obs, Logger: log,
	})
	require.NoError(t, err)

	exportCfg := exportjson.NewConfig(cfg)
	export, err := exportjson.NewHandler(exportjson.HandlerOptions{
		Config: exportCfg, Exporter: pipe.Assembler, Records: pipe.Records, Observability: obs, Logger: log,
	})
	require.NoError(t, err)

	docxCfg := generatedocx.NewConfig(cfg)
	docx, err := generatedocx.NewHandler(generatedocx.HandlerOptions{
		Config: docxCfg, Exporter: pipe.Assembler, Records: pipe.Records, Observability: obs, Logger: log,
	})
	require.NoError(t, err)

	require.NoError(t, m.Start(prefill, camunda.WorkerSettings{MaxJobsActive: prefillCfg.MaxJobsActive, Timeout: prefillCfg.Timeout}))
	require.NoError(t, m.Start(export, camunda.WorkerSettings{MaxJobsActive: exportCfg.MaxJobsActive, Timeout: exportCfg.Timeout}))
	require.NoError(t, m.Start(docx, camunda.WorkerSettings{MaxJobsActive: docxCfg.MaxJobsActive, Timeout: docxCfg.Timeout}))
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkPipeline_ExportDocument(b *testing.B) {
	cfg := &config.Config{
		Templates: config.TemplatesConfig{Source: config.SourceFile, Directory: filepath.Join("..", "..", "templates")},
		Output:    config.OutputConfig{Sink: config.SinkFile, Directory: b.TempDir()},
	}
	pipe, err := pipeline.New(context.Background(), cfg, logger.NewNoOpLogger(), pipeline.Options{})
	if err != nil {
		b.Fatal(err)
	}
	defer pipe.Close()

	w := report.NewWorkOrder()
	w.ExpedienteNova = "NC-CU-07215-25"
	rec := report.NewWorkOrderRecord(w)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pipe.Assembler.ExportDocument(context.Background(), rec); err != nil {
			b.Fatal(err)
		}
	}
}
