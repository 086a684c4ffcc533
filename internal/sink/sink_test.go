package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inspection-workers/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPutter struct {
	bucket  string
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newRecordingPutter() *recordingPutter {
	return &recordingPutter{bucket: "informes", objects: map[string][]byte{}, types: map[string]string{}}
}

func (p *recordingPutter) Put(ctx context.Context, key, contentType string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.objects[key] = data
	p.types[key] = contentType
	return nil
}

func (p *recordingPutter) Bucket() string { return p.bucket }

func TestFileSink_Put(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "salida")
	s := &FileSink{Dir: dir}

	loc, err := s.Put(context.Background(), "Informe_Final_NC-1_2025-06-02.docx", "application/octet-stream", []byte("doc"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Informe_Final_NC-1_2025-06-02.docx"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "doc", string(data))

	// names cannot escape the directory
	loc, err = s.Put(context.Background(), "../../fuera.json", "application/json", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fuera.json"), loc)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileSink_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&FileSink{Dir: t.TempDir()}).Put(ctx, "a.docx", "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestS3Sink_Put(t *testing.T) {
	putter := newRecordingPutter()
	s := NewS3Sink(putter, "entregas")
	s.now = func() time.Time { return time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC) }
	s.newID = func() string { return "0b7c" }

	loc, err := s.Put(context.Background(), "Orden_Trabajo_NC-1_2025-06-02.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("doc"))
	require.NoError(t, err)

	key := "entregas/2025/06/0b7c/Orden_Trabajo_NC-1_2025-06-02.docx"
	assert.Equal(t, "s3://informes/"+key, loc)
	assert.Equal(t, []byte("doc"), putter.objects[key])
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", putter.types[key])

	putter.err = errors.New("access denied")
	_, err = s.Put(context.Background(), "x.json", "application/json", nil)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(config.OutputConfig{Sink: config.SinkFile, Directory: "out"}, nil)
	require.NoError(t, err)
	assert.Equal(t, &FileSink{Dir: "out"}, s)

	s, err = New(config.OutputConfig{Sink: config.SinkS3, Prefix: "p"}, newRecordingPutter())
	require.NoError(t, err)
	assert.IsType(t, &S3Sink{}, s)

	_, err = New(config.OutputConfig{Sink: config.SinkS3}, nil)
	assert.Error(t, err)

	_, err = New(config.OutputConfig{Sink: "ftp"}, nil)
	assert.Error(t, err)
}
