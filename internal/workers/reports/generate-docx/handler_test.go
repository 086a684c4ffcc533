package generatedocx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"inspection-workers/internal/assembler"
	"inspection-workers/internal/common/config"
	"inspection-workers/internal/common/errors"
	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/docx"
	"inspection-workers/internal/report"
	"inspection-workers/internal/store"
	"inspection-workers/internal/workers/reports/reportjob"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Exporter
// ==========================

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) ExportDocument(ctx context.Context, rec report.InspectionRecord) (*assembler.RenderedDocument, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assembler.RenderedDocument), args.Error(1)
}

func (m *MockExporter) Deliver(ctx context.Context, doc *assembler.RenderedDocument) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{
		Enabled:          true,
		MaxJobsActive:    2,
		Timeout:          5 * time.Second,
		DeliverByDefault: true,
	}
}

func createTestStore(t *testing.T) *store.RecordStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	rs, err := store.NewRecordStore(rdb, "", 0)
	require.NoError(t, err)
	t.Cleanup(rs.Close)
	return rs
}

func createTestHandler(t *testing.T, exporter Exporter, records reportjob.RecordStore) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		Config:   createTestConfig(),
		Exporter: exporter,
		Records:  records,
		Logger:   logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "inspection-report",
		ElementId:          "Activity_GenerateDocx",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func sampleFieldInspection() report.InspectionRecord {
	f := report.NewFieldInspection()
	f.ExpedienteNova = "NC-CU-07215-25"
	f.Exportador = "Cítricos del Sur S.L."
	return report.NewFieldInspectionRecord(f)
}

func renderedDoc() *assembler.RenderedDocument {
	return &assembler.RenderedDocument{
		Name:        "Informe_Campo_NC-CU-07215-25_2025-03-14.docx",
		Format:      assembler.FormatDOCX,
		ContentType: assembler.ContentTypeDOCX,
		ReportType:  report.TypeFieldInspection,
		Data:        []byte("PK\x03\x04docx"),
	}
}

func boolPtr(b bool) *bool { return &b }

// ==========================
// Handler Creation Tests
// ==========================

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr string
	}{
		{
			name: "valid",
			opts: HandlerOptions{Config: createTestConfig(), Exporter: &MockExporter{}},
		},
		{
			name:    "missing exporter",
			opts:    HandlerOptions{Config: createTestConfig()},
			wantErr: "exporter is required",
		},
		{
			name:    "invalid timeout",
			opts:    HandlerOptions{Config: &Config{MaxJobsActive: 1}, Exporter: &MockExporter{}},
			wantErr: "timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = logger.NewTestLogger(t)
			h, err := NewHandler(tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TaskType, h.GetTaskType())
			assert.True(t, h.IsEnabled())
		})
	}
}

func TestNewConfig(t *testing.T) {
	appCfg := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: false, MaxJobsActive: 9, Timeout: 1500},
	}}

	cfg := NewConfig(appCfg)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 9, cfg.MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.DeliverByDefault)

	assert.Equal(t, DefaultConfig(), NewConfig(nil))
}

// ==========================
// Input Parsing Tests
// ==========================

func TestParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
		check     func(t *testing.T, in *Input)
	}{
		{
			name: "inline record",
			variables: map[string]interface{}{
				"inspectionRecord": sampleFieldInspection(),
				"deliver":          false,
				"persist":          true,
			},
			check: func(t *testing.T, in *Input) {
				require.NotNil(t, in.Record)
				assert.Equal(t, report.TypeFieldInspection, in.Record.Type)
				assert.False(t, in.shouldDeliver(true))
				assert.True(t, in.Persist)
			},
		},
		{
			name:      "stored record reference",
			variables: map[string]interface{}{"reportType": "work_order", "expedienteNova": "NC-1"},
			check: func(t *testing.T, in *Input) {
				assert.Nil(t, in.Record)
				assert.Equal(t, "work_order", in.ReportType)
				assert.True(t, in.shouldDeliver(true))
			},
		},
		{
			name:      "neither record nor type",
			variables: map[string]interface{}{"expedienteNova": "NC-1"},
			wantErr:   true,
		},
		{
			name:      "deliver not a boolean",
			variables: map[string]interface{}{"reportType": "work_order", "deliver": "yes"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in Input
			err := reportjob.ParseVariables(createMockJob(1, tt.variables), GetInputSchema(), &in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidInput, reportjob.MapError(err).Code)
				return
			}
			require.NoError(t, err)
			tt.check(t, &in)
		})
	}
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_Delivers(t *testing.T) {
	exporter := &MockExporter{}
	doc := renderedDoc()
	exporter.On("ExportDocument", mock.Anything, mock.AnythingOfType("report.InspectionRecord")).Return(doc, nil)
	exporter.On("Deliver", mock.Anything, doc).Return("out/"+doc.Name, nil)

	h := createTestHandler(t, exporter, nil)
	rec := sampleFieldInspection()

	out, err := h.Execute(context.Background(), &Input{RecordInput: reportjob.RecordInput{Record: &rec}})
	require.NoError(t, err)

	assert.Equal(t, "field_inspection", out.ReportType)
	assert.Equal(t, "NC-CU-07215-25", out.ExpedienteNova)
	assert.Equal(t, doc.Name, out.DocumentName)
	assert.Equal(t, len(doc.Data), out.DocumentSize)
	assert.Equal(t, "out/"+doc.Name, out.DocumentLocation)
	assert.Empty(t, out.DocumentBase64)
	exporter.AssertExpectations(t)
}

func TestExecute_InlineDocument(t *testing.T) {
	exporter := &MockExporter{}
	doc := renderedDoc()
	exporter.On("ExportDocument", mock.Anything, mock.Anything).Return(doc, nil)

	h := createTestHandler(t, exporter, nil)
	rec := sampleFieldInspection()

	out, err := h.Execute(context.Background(), &Input{
		RecordInput: reportjob.RecordInput{Record: &rec},
		Deliver:     boolPtr(false),
	})
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(out.DocumentBase64)
	require.NoError(t, err)
	assert.Equal(t, doc.Data, decoded)
	assert.Empty(t, out.DocumentLocation)
	exporter.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestExecute_PersistThenLoad(t *testing.T) {
	rs := createTestStore(t)
	exporter := &MockExporter{}
	doc := renderedDoc()
	exporter.On("ExportDocument", mock.Anything, mock.Anything).Return(doc, nil)
	exporter.On("Deliver", mock.Anything, doc).Return("s3://bucket/key", nil)

	h := createTestHandler(t, exporter, rs)
	rec := sampleFieldInspection()

	out, err := h.Execute(context.Background(), &Input{
		RecordInput: reportjob.RecordInput{Record: &rec},
		Persist:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "inspection:record:field_inspection:NC-CU-07215-25", out.RecordKey)

	// a second job refers to the stored record only
	out, err = h.Execute(context.Background(), &Input{
		RecordInput: reportjob.RecordInput{ReportType: "field_inspection", ExpedienteNova: "NC-CU-07215-25"},
	})
	require.NoError(t, err)
	assert.Equal(t, "NC-CU-07215-25", out.ExpedienteNova)
	assert.Empty(t, out.RecordKey)
}

func TestExecute_Errors(t *testing.T) {
	renderErr := &docx.RenderError{Errors: []docx.TagError{{Tag: "{{fecha", Reason: docx.ReasonUnclosedTag}}}

	tests := []struct {
		name    string
		setup   func(m *MockExporter)
		input   func() *Input
		records reportjob.RecordStore
		want    errors.ErrorCode
	}{
		{
			name:  "render failure",
			setup: func(m *MockExporter) { m.On("ExportDocument", mock.Anything, mock.Anything).Return(nil, renderErr) },
			input: func() *Input {
				rec := sampleFieldInspection()
				return &Input{RecordInput: reportjob.RecordInput{Record: &rec}}
			},
			want: errors.ErrCodeTemplateRenderFailed,
		},
		{
			name: "delivery failure",
			setup: func(m *MockExporter) {
				m.On("ExportDocument", mock.Anything, mock.Anything).Return(renderedDoc(), nil)
				m.On("Deliver", mock.Anything, mock.Anything).Return("", fmt.Errorf("disk full"))
			},
			input: func() *Input {
				rec := sampleFieldInspection()
				return &Input{RecordInput: reportjob.RecordInput{Record: &rec}}
			},
			want: errors.ErrCodeDocumentDeliveryFailed,
		},
		{
			name:  "persist without store",
			setup: func(m *MockExporter) {},
			input: func() *Input {
				rec := sampleFieldInspection()
				return &Input{RecordInput: reportjob.RecordInput{Record: &rec}, Persist: true}
			},
			want: errors.ErrCodeInvalidInput,
		},
		{
			name:  "record not stored",
			setup: func(m *MockExporter) {},
			input: func() *Input {
				return &Input{RecordInput: reportjob.RecordInput{ReportType: "final_inspection", ExpedienteNova: "NC-404"}}
			},
			records: createTestStore(t),
			want:    errors.ErrCodeRecordNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := &MockExporter{}
			tt.setup(exporter)
			h := createTestHandler(t, exporter, tt.records)

			out, err := h.Execute(context.Background(), tt.input())
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.want, reportjob.MapError(err).Code)
		})
	}
}
