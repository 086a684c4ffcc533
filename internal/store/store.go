// Package store keeps in-progress inspection records in Redis so a later
// report can be prefilled from an earlier one.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"inspection-workers/internal/report"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
)

// ErrRecordNotFound is returned when no record is stored under the key.
var ErrRecordNotFound = errors.New("record not found")

// DefaultKeyPrefix namespaces record keys.
const DefaultKeyPrefix = "inspection:record:"

const noExpediente = "sin_expediente"

// RecordStore saves records as zstd-compressed JSON, one key per report
// type and expediente.
type RecordStore struct {
	redis  redis.Cmdable
	prefix string
	ttl    time.Duration
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

func NewRecordStore(rdb redis.Cmdable, prefix string, ttl time.Duration) (*RecordStore, error) {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &RecordStore{redis: rdb, prefix: prefix, ttl: ttl, enc: enc, dec: dec}, nil
}

// Key is the Redis key of a record.
func (s *RecordStore) Key(t report.ReportType, expediente string) string {
	expediente = strings.TrimSpace(expediente)
	if expediente == "" {
		expediente = noExpediente
	}
	return s.prefix + string(t) + ":" + expediente
}

// Save stores rec and returns its key.
func (s *RecordStore) Save(ctx context.Context, rec report.InspectionRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	key := s.Key(rec.Type, rec.ExpedienteNova())
	if err := s.redis.Set(ctx, key, s.enc.EncodeAll(raw, nil), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("save %s: %w", key, err)
	}
	return key, nil
}

// Load reads the record of type t for expediente.
func (s *RecordStore) Load(ctx context.Context, t report.ReportType, expediente string) (report.InspectionRecord, error) {
	key := s.Key(t, expediente)
	compressed, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return report.InspectionRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	if err != nil {
		return report.InspectionRecord{}, fmt.Errorf("load %s: %w", key, err)
	}

	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return report.InspectionRecord{}, fmt.Errorf("decompress %s: %w", key, err)
	}
	var rec report.InspectionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return report.InspectionRecord{}, fmt.Errorf("decode %s: %w", key, err)
	}
	if rec.Type != t {
		return report.InspectionRecord{}, fmt.Errorf("decode %s: stored type %s", key, rec.Type)
	}
	return rec, nil
}

// Delete removes a stored record. Missing records are not an error.
func (s *RecordStore) Delete(ctx context.Context, t report.ReportType, expediente string) error {
	return s.redis.Del(ctx, s.Key(t, expediente)).Err()
}

func (s *RecordStore) Close() {
	s.enc.Close()
	s.dec.Close()
}
