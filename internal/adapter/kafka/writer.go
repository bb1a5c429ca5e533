package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/couchcryptid/weather-ranking/internal/config"
	"github.com/couchcryptid/weather-ranking/internal/domain"
)

// Content types set on the content_type header.
const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

// ReportMessage is the payload published for one run.
type ReportMessage struct {
	RunID     string     `json:"run_id" msgpack:"run_id"`
	StartedAt time.Time  `json:"started_at" msgpack:"started_at"`
	Header    []string   `json:"header" msgpack:"header"`
	Rows      [][]string `json:"rows" msgpack:"rows"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes each run's report as a single message.
// It implements domain.ReportSink.
type Writer struct {
	writer   messageWriter
	encoding string
	logger   *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReportTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, encoding: cfg.KafkaEncoding, logger: logger}
}

// WriteReport serializes and publishes the report, keyed by run ID.
func (w *Writer) WriteReport(ctx context.Context, run domain.RunInfo, table domain.ReportTable) error {
	msg, err := serializeToMessage(run, table, w.encoding)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	w.logger.Info("report published", "run_id", run.ID, "rows", len(table.Rows), "bytes", len(msg.Value))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage encodes a report into a Kafka message.
func serializeToMessage(run domain.RunInfo, table domain.ReportTable, encoding string) (kafkago.Message, error) {
	payload := ReportMessage{
		RunID:     run.ID,
		StartedAt: run.StartedAt,
		Header:    table.Header,
		Rows:      table.Rows,
	}

	var (
		data        []byte
		err         error
		contentType string
	)
	switch encoding {
	case config.EncodingMsgpack:
		data, err = msgpack.Marshal(payload)
		contentType = ContentTypeMsgpack
	default:
		data, err = json.Marshal(payload)
		contentType = ContentTypeJSON
	}
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}

	return kafkago.Message{
		Key:   []byte(run.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "content_type", Value: []byte(contentType)},
			{Key: "run_id", Value: []byte(run.ID)},
			{Key: "started_at", Value: []byte(run.StartedAt.Format(time.RFC3339))},
		},
	}, nil
}

// DecodeMessage decodes a message produced by Writer, using its content_type header.
func DecodeMessage(msg kafkago.Message) (ReportMessage, error) {
	var out ReportMessage
	contentType := ContentTypeJSON
	for _, h := range msg.Headers {
		if h.Key == "content_type" {
			contentType = string(h.Value)
		}
	}
	var err error
	if contentType == ContentTypeMsgpack {
		err = msgpack.Unmarshal(msg.Value, &out)
	} else {
		err = json.Unmarshal(msg.Value, &out)
	}
	if err != nil {
		return ReportMessage{}, fmt.Errorf("decode report message: %w", err)
	}
	return out, nil
}
