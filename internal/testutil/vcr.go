// Package testutil reúne helpers compartilhados pelos testes dos pacotes internos
package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// NewVCRRecorder cria um recorder que reproduz testdata/fixtures/<cassetteName>.yaml.
// Com VCR_MODE=record as chamadas vão ao banco real e a fita é regravada.
func NewVCRRecorder(t *testing.T, cassetteName string, realTransport http.RoundTripper) (*recorder.Recorder, func()) {
	t.Helper()

	mode := recorder.ModeReplaying
	if os.Getenv("VCR_MODE") == "record" {
		mode = recorder.ModeRecording
	}

	cassettePath := filepath.Join("testdata", "fixtures", cassetteName)

	r, err := recorder.NewAsMode(cassettePath, mode, realTransport)
	if err != nil {
		t.Fatalf("Failed to create VCR recorder: %v", err)
	}

	// Corpo e headers variam (tokens, txid); casa apenas método e URL
	r.SetMatcher(func(r *http.Request, i cassette.Request) bool {
		return r.Method == i.Method && r.URL.String() == i.URL
	})

	// Credenciais nunca vão para a fita
	r.AddSaveFilter(func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "Authorization")
		delete(i.Request.Form, "client_secret")
		delete(i.Request.Form, "Client_Secret")
		return nil
	})

	cleanup := func() {
		if err := r.Stop(); err != nil {
			t.Errorf("Failed to stop VCR recorder: %v", err)
		}
	}

	return r, cleanup
}
