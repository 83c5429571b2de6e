package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestWrite_PublishesOutcomeKeyedByURL(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	sink := NewWithWriter(writer)

	outcome := crawler.Outcome{
		URL:    "https://league.test/players/7",
		Tries:  1,
		Result: &crawler.Player{URL: "https://league.test/players/7", Name: "Alex Keeper"},
	}
	require.NoError(t, sink.Write(context.Background(), outcome))

	require.Len(t, writer.messages, 1)
	require.Equal(t, []byte(outcome.URL), writer.messages[0].Key)

	var decoded crawler.Outcome
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	require.Equal(t, outcome.Tries, decoded.Tries)
	require.Equal(t, "Alex Keeper", decoded.Result.Name)
}

func TestWrite_PropagatesWriterError(t *testing.T) {
	t.Parallel()

	sink := NewWithWriter(&fakeWriter{err: errors.New("broker down")})
	err := sink.Write(context.Background(), crawler.Outcome{URL: "u", Tries: 1, Error: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "broker down")
}
