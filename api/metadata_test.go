package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathParams(t *testing.T) {
	m := Metadata{Path: "/_matrix/client/r0/rooms/{room_id}/send/{event_type}/{txn_id}"}
	assert.Equal(t, []string{"room_id", "event_type", "txn_id"}, m.PathParams())

	assert.Nil(t, Metadata{Path: "/_matrix/client/versions"}.PathParams())
}

func TestParseAuthScheme(t *testing.T) {
	for name, want := range map[string]AuthScheme{
		"None":            AuthNone,
		"AccessToken":     AuthAccessToken,
		"ServerSignature": AuthServerSignature,
	} {
		got, ok := ParseAuthScheme(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}

	_, ok := ParseAuthScheme("QueryToken")
	assert.False(t, ok)
}
