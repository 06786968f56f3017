package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Arquivos de certificado em testdata/certs.
// client.pem é assinado por ca.pem; client.pfx contém o mesmo par com a senha PFXPassphrase.
const (
	CAFile         = "ca.pem"
	ClientCertFile = "client.pem"
	ClientKeyFile  = "client.key"
	ClientPFXFile  = "client.pfx"
	PFXPassphrase  = "segredo"
)

// CertsFixturesDir retorna o caminho absoluto de testdata/certs
func CertsFixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", "certs")
}

// CertFixture lê um arquivo de testdata/certs
func CertFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(CertsFixturesDir(), name))
	if err != nil {
		t.Fatalf("Failed to read cert fixture %s: %v", name, err)
	}
	return data
}

// CertsDir monta um diretório de certificados temporário.
// files mapeia o caminho relativo de destino (ex.: "empresa/bb.pfx") para o arquivo de origem.
func CertsDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for dst, src := range files {
		WriteFile(t, filepath.Join(root, dst), CertFixture(t, src))
	}
	return root
}

// WriteFile grava data em path criando os diretórios intermediários
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
