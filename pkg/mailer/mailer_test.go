package mailer

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBuildAttachesFiles(t *testing.T) {
	e, err := build(Message{
		From:    "noreply@example.org",
		To:      []string{"lab@example.org"},
		Subject: "results",
		HTML:    []byte("<p>ok</p>"),
		Attachments: []Attachment{
			{Filename: "results.csv", ContentType: "text/csv", Content: []byte("a;b\n")},
		},
	})
	require.NoError(t, err)
	require.Len(t, e.Attachments, 1)
	require.Equal(t, "results.csv", e.Attachments[0].Filename)

	raw, err := e.Bytes()
	require.NoError(t, err)
	require.True(t, strings.Contains(string(raw), "results.csv"))
}

func TestBuildRequiresRecipients(t *testing.T) {
	_, err := build(Message{Subject: "results"})
	require.Error(t, err)
}

func TestNewSMTPSenderRequiresHost(t *testing.T) {
	_, err := NewSMTPSender(Config{}, zerolog.New(io.Discard))
	require.Error(t, err)

	sender, err := NewSMTPSender(Config{Host: "smtp.example.org"}, zerolog.New(io.Discard))
	require.NoError(t, err)
	require.Equal(t, "smtp.example.org:587", sender.addr)
	require.Nil(t, sender.auth)
}

func TestLogSenderAcceptsMessage(t *testing.T) {
	sender := NewLogSender(zerolog.New(io.Discard))
	err := sender.Send(context.Background(), Message{To: []string{"lab@example.org"}, Subject: "results"})
	require.NoError(t, err)
}
