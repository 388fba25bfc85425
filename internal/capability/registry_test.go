package capability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCard() AgentCard {
	return AgentCard{
		Name:        "signal_processor",
		Description: "Signal quality and analysis",
		URL:         "http://localhost:8003",
		Version:     "1.0.0",
		Category:    "signal_processor",
		Skills:      []Skill{{ID: "analyze", Name: "Analyze signals", Description: "EEG/EMG analysis"}},
	}
}

func TestSealAndVerifyCard(t *testing.T) {
	card, err := Seal(sampleCard(), "top-secret")
	require.NoError(t, err)
	require.NotEmpty(t, card.Checksum)
	require.NotEmpty(t, card.Signature)
	require.NoError(t, VerifyCard(card, "top-secret"))

	assert.Error(t, VerifyCard(card, "other-secret"))

	tampered := card
	tampered.Description = "something else"
	assert.Error(t, VerifyCard(tampered, "top-secret"))
}

func TestVerifyCardWithoutSecretChecksChecksumOnly(t *testing.T) {
	card, err := Seal(sampleCard(), "")
	require.NoError(t, err)
	assert.Empty(t, card.Signature)
	assert.NoError(t, VerifyCard(card, ""))

	card.Checksum = "deadbeef"
	assert.Error(t, VerifyCard(card, ""))
}

func TestServiceTokenAudience(t *testing.T) {
	secret := []byte("s3cr3t")
	tok, err := SignServiceToken(secret, "documentation", time.Minute)
	require.NoError(t, err)

	claims, err := ParseServiceToken(tok, secret, "documentation")
	require.NoError(t, err)
	assert.Equal(t, TokenIssuer, claims["iss"])

	_, err = ParseServiceToken(tok, secret, "orchestrator")
	assert.Error(t, err)
	_, err = ParseServiceToken(tok, []byte("wrong"), "documentation")
	assert.Error(t, err)
}

type staticProvider struct{ category string }

func (p staticProvider) Category() string { return p.category }
func (p staticProvider) Probe(context.Context) (AgentCard, error) {
	return AgentCard{Category: p.category}, nil
}
func (p staticProvider) Invoke(context.Context, Request) (Reply, error) { return Reply{}, nil }

func TestRegistryKeepsConfiguredOrder(t *testing.T) {
	reg := NewRegistry(staticProvider{"b"}, staticProvider{"a"}, nil, staticProvider{"b"})
	assert.Equal(t, []string{"b", "a"}, reg.Categories())
	assert.Len(t, reg.Providers(), 2)

	_, err := reg.Provider("missing")
	assert.True(t, errors.Is(err, ErrProviderMissing))
}

func TestHTTPProviderProbeAndInvoke(t *testing.T) {
	secret := "top-secret"
	card, err := Seal(sampleCard(), secret)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/agent.json":
			_ = json.NewEncoder(w).Encode(card)
		case "/process":
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if _, err := ParseServiceToken(strings.TrimPrefix(auth, "Bearer "), []byte(secret), "signal_processor"); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var req Request
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(Reply{Response: "echo: " + req.Message + " / " + req.Context.ResearchArea})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider("signal_processor", srv.URL, HTTPProviderConfig{Secret: secret, ProbeTimeout: time.Second, InvokeTimeout: time.Second})
	got, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "signal_processor", got.Name)

	reply, err := p.Invoke(context.Background(), Request{Message: "check EEG quality", Context: RequestContext{ResearchArea: "neuro"}})
	require.NoError(t, err)
	assert.Equal(t, "echo: check EEG quality / neuro", reply.Response)
}

func TestHTTPProviderRejectsUnsignedCard(t *testing.T) {
	card, err := Seal(sampleCard(), "")
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(card)
	}))
	defer srv.Close()

	p := NewHTTPProvider("signal_processor", srv.URL, HTTPProviderConfig{Secret: "top-secret", ProbeTimeout: time.Second})
	_, err = p.Probe(context.Background())
	assert.Error(t, err)
}

func TestHTTPProviderProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewHTTPProvider("documentation", url, HTTPProviderConfig{ProbeTimeout: time.Second})
	_, err := p.Probe(context.Background())
	assert.Error(t, err)
}
