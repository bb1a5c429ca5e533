package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-ranking/internal/config"
	"github.com/couchcryptid/weather-ranking/internal/domain"
)

var (
	testRun = domain.RunInfo{
		ID:        "6f1c1d3e-8f0a-4c55-9a43-2f7f3b0f1a10",
		StartedAt: time.Date(2024, 5, 26, 6, 0, 0, 0, time.UTC),
	}
	testTable = domain.ReportTable{
		Header: []string{"City/day", "", "26-05", "Average", "Rank"},
		Rows: [][]string{
			{"Moscow", "temperature", "17.5", "17.5", "1"},
			{"", "comfortable hours", "4.0", "4.0", ""},
		},
	}
)

type fakeMessageWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeMessageWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeMessageWriter) Close() error {
	f.closed = true
	return nil
}

func testWriter(mw messageWriter, encoding string) *Writer {
	return &Writer{writer: mw, encoding: encoding, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSerializeToMessage_JSON(t *testing.T) {
	msg, err := serializeToMessage(testRun, testTable, config.EncodingJSON)
	require.NoError(t, err)

	assert.Equal(t, []byte(testRun.ID), msg.Key)
	assert.Contains(t, string(msg.Value), `"run_id":"6f1c1d3e-8f0a-4c55-9a43-2f7f3b0f1a10"`)
	assert.Contains(t, string(msg.Value), `["Moscow","temperature","17.5","17.5","1"]`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "content_type", msg.Headers[0].Key)
	assert.Equal(t, []byte(ContentTypeJSON), msg.Headers[0].Value)
	assert.Equal(t, "run_id", msg.Headers[1].Key)
	assert.Equal(t, "started_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-05-26T06:00:00Z"), msg.Headers[2].Value)
}

func TestSerializeToMessage_RoundTrip(t *testing.T) {
	for _, enc := range []string{config.EncodingJSON, config.EncodingMsgpack} {
		t.Run(enc, func(t *testing.T) {
			msg, err := serializeToMessage(testRun, testTable, enc)
			require.NoError(t, err)

			got, err := DecodeMessage(msg)

			require.NoError(t, err)
			assert.Equal(t, testRun.ID, got.RunID)
			assert.True(t, testRun.StartedAt.Equal(got.StartedAt))
			assert.Equal(t, testTable.Header, got.Header)
			assert.Equal(t, testTable.Rows, got.Rows)
		})
	}
}

func TestSerializeToMessage_MsgpackIsCompact(t *testing.T) {
	j, err := serializeToMessage(testRun, testTable, config.EncodingJSON)
	require.NoError(t, err)
	m, err := serializeToMessage(testRun, testTable, config.EncodingMsgpack)
	require.NoError(t, err)

	assert.Less(t, len(m.Value), len(j.Value))
	assert.Equal(t, []byte(ContentTypeMsgpack), m.Headers[0].Value)
}

func TestDecodeMessage_Invalid(t *testing.T) {
	_, err := DecodeMessage(kafkago.Message{Value: []byte("{broken")})

	assert.Error(t, err)
}

func TestWriter_WriteReport(t *testing.T) {
	mw := &fakeMessageWriter{}
	w := testWriter(mw, config.EncodingJSON)

	require.NoError(t, w.WriteReport(context.Background(), testRun, testTable))

	require.Len(t, mw.msgs, 1)
	assert.Equal(t, []byte(testRun.ID), mw.msgs[0].Key)
	require.NoError(t, w.Close())
	assert.True(t, mw.closed)
}

func TestWriter_WriteReport_Error(t *testing.T) {
	w := testWriter(&fakeMessageWriter{err: errors.New("leader not available")}, config.EncodingJSON)

	err := w.WriteReport(context.Background(), testRun, testTable)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
