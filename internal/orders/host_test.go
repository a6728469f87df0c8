package orders

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostURL_ConfiguredBaseWins(t *testing.T) {
	r1 := httptest.NewRequest("POST", "http://10.0.0.5:3000/send-order-email", nil)
	r2 := httptest.NewRequest("POST", "http://internal-lb/send-order-email", nil)
	r2.Header.Set("X-Forwarded-Proto", "https")

	assert.Equal(t, "https://api.shop.example", HostURL(r1, " https://api.shop.example/ ", true))
	assert.Equal(t, "https://api.shop.example", HostURL(r2, " https://api.shop.example/ ", true))
}

func TestHostURL_FallsBackToRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "http://shop.local:3000/send-order-email", nil)
	assert.Equal(t, "http://shop.local:3000", HostURL(r, "", false))

	r.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://shop.local:3000", HostURL(r, "   ", false))
}

func TestHostURL_ForwardedProtoOnlyWhenTrusted(t *testing.T) {
	r := httptest.NewRequest("POST", "http://shop.local/send-order-email", nil)
	r.Header.Set("X-Forwarded-Proto", "https, http")
	assert.Equal(t, "http://shop.local", HostURL(r, "", false), "untrusted proxy header applied")
	assert.Equal(t, "https://shop.local", HostURL(r, "", true), "trusted proxy header ignored")
}
