package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLogMessage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr Reason
	}{
		{name: "simple", body: `{"message": "hello"}`, want: "hello"},
		{name: "extra fields ignored", body: `{"level":"warn","message":"disk full","n":3}`, want: "disk full"},
		{name: "empty message", body: `{"message":""}`, want: ""},
		{name: "unicode", body: `{"message":"héllo 世界"}`, want: "héllo 世界"},
		{name: "surrounding whitespace", body: "\n  {\"message\":\"x\"}  \n", want: "x"},
		{name: "empty body", body: "", wantErr: ReasonEmptyBody},
		{name: "whitespace body", body: "   \n", wantErr: ReasonEmptyBody},
		{name: "invalid json", body: `{"message": "hello"`, wantErr: ReasonInvalidJSON},
		{name: "trailing garbage", body: `{"message":"a"} {}`, wantErr: ReasonInvalidJSON},
		{name: "plain text", body: `hello`, wantErr: ReasonInvalidJSON},
		{name: "array", body: `[{"message":"hello"}]`, wantErr: ReasonNotObject},
		{name: "string scalar", body: `"hello"`, wantErr: ReasonNotObject},
		{name: "number scalar", body: `42`, wantErr: ReasonNotObject},
		{name: "null", body: `null`, wantErr: ReasonNotObject},
		{name: "empty object", body: `{}`, wantErr: ReasonMissingMessage},
		{name: "wrong key", body: `{"msg": "hello"}`, wantErr: ReasonMissingMessage},
		{name: "null message", body: `{"message": null}`, wantErr: ReasonMessageNotString},
		{name: "number message", body: `{"message": 12}`, wantErr: ReasonMessageNotString},
		{name: "object message", body: `{"message": {"a":1}}`, wantErr: ReasonMessageNotString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeLogMessage([]byte(tt.body))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedPayload)

				var mpe *MalformedPayloadError
				require.True(t, errors.As(err, &mpe))
				assert.Equal(t, tt.wantErr, mpe.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.Message)
		})
	}
}

func TestMalformedPayloadError_Message(t *testing.T) {
	err := Malformed(ReasonTooLarge, errors.New("limit 10"))
	assert.Equal(t, "malformed payload: body too large: limit 10", err.Error())
	assert.Equal(t, "malformed payload: empty body", Malformed(ReasonEmptyBody, nil).Error())
}

func TestEntry_RemoteHost(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	e := NewEntry(LogMessage{Message: "m"}, "10.0.0.7:51234", at)
	assert.Equal(t, "10.0.0.7", e.RemoteHost())
	assert.Equal(t, SourceRemote, e.Source)
	assert.Equal(t, time.UTC, e.ReceivedAt.Location())

	e.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", e.RemoteHost())
}
