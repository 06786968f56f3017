// Package config gerencia as configurações do gateway
// carregando variáveis de ambiente do arquivo .env e de um config.yaml opcional
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// DefaultUpstreamTimeout limita cada chamada ao banco
	DefaultUpstreamTimeout = 30 * time.Second
)

// Config armazena todas as configurações da aplicação.
// É construída uma única vez no main e repassada por referência.
type Config struct {
	Env       string                `koanf:"env"`
	LogLevel  string                `koanf:"log_level"`
	Server    ServerConfig          `koanf:"server"`
	Certs     CertsConfig           `koanf:"certs"`
	Telemetry TelemetryConfig       `koanf:"telemetry"`
	Banks     map[string]BankConfig `koanf:"banks"`
}

// ServerConfig armazena as configurações do servidor HTTP
type ServerConfig struct {
	Port string `koanf:"port"`
}

// CertsConfig define onde ficam os certificados e o cache opcional de agentes TLS
type CertsConfig struct {
	Root      string        `koanf:"root"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`  // 0 = agente novo a cada chamada
	CacheSize int           `koanf:"cache_size"` // máximo de pares (banco, empresa) em cache
}

// TelemetryConfig define o exportador de traces (otlp, stdout ou vazio)
type TelemetryConfig struct {
	Exporter    string `koanf:"exporter"`
	ServiceName string `koanf:"service_name"`
}

// BankConfig armazena as configurações de uma instituição.
// Os campos de certificado guardam nomes de arquivo, nunca o conteúdo.
type BankConfig struct {
	Endpoint       string        `koanf:"endpoint"`
	AuthEndpoint   string        `koanf:"auth_endpoint"`
	Cert           string        `koanf:"cert"` // .pem, ou .pfx/.p12 para bancos com bundle PKCS12
	Key            string        `koanf:"key"`
	CA             string        `koanf:"ca"`
	CertPassphrase string        `koanf:"cert_passphrase"`
	Timeout        time.Duration `koanf:"timeout"`
}

// Enabled indica se o banco tem endpoint configurado
func (b BankConfig) Enabled() bool {
	return b.Endpoint != ""
}

// globalEnv mapeia variáveis de ambiente globais para chaves do koanf
var globalEnv = map[string]string{
	"APP_ENV":              "env",
	"LOG_LEVEL":            "log_level",
	"PORT":                 "server.port",
	"CERTS_DIR":            "certs.root",
	"CERTS_CACHE_TTL":      "certs.cache_ttl",
	"CERTS_CACHE_SIZE":     "certs.cache_size",
	"OTEL_TRACES_EXPORTER": "telemetry.exporter",
	"OTEL_SERVICE_NAME":    "telemetry.service_name",
}

// bankFields são os sufixos aceitos em <BANCO>_<CAMPO>
var bankFields = map[string]string{
	"endpoint":        "endpoint",
	"auth_endpoint":   "auth_endpoint",
	"token_endpoint":  "auth_endpoint", // ITAU_TOKEN_ENDPOINT
	"cert":            "cert",
	"key":             "key",
	"ca":              "ca",
	"cert_passphrase": "cert_passphrase",
	"timeout":         "timeout",
}

// Load carrega as configurações do arquivo .env, do config.yaml e das variáveis de ambiente.
// Variáveis de ambiente têm prioridade sobre o arquivo.
func Load() (*Config, error) {
	// Tenta carregar .env (ignora erro se não existir)
	_ = godotenv.Load(envFile(os.Getenv("APP_ENV")))

	k := koanf.New(".")

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("erro ao ler %s: %w", path, err)
		}
	}

	// Variáveis vazias são ignoradas para não apagar o arquivo nem os padrões
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return envKey(key), value
	}), nil); err != nil {
		return nil, fmt.Errorf("erro ao ler variáveis de ambiente: %w", err)
	}

	setDefault(k, "env", EnvDevelopment)
	setDefault(k, "log_level", "info")
	setDefault(k, "server.port", "4000")
	setDefault(k, "certs.root", "certs")
	setDefault(k, "certs.cache_ttl", "0s")
	setDefault(k, "certs.cache_size", 64)
	setDefault(k, "telemetry.service_name", "api-pix")

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("erro ao decodificar configurações: %w", err)
	}

	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Bank retorna a configuração de uma instituição (zero value se ausente)
func (c *Config) Bank(b domain.Bank) BankConfig {
	return c.Banks[string(b)]
}

// EnabledBanks lista os bancos com endpoint configurado
func (c *Config) EnabledBanks() []domain.Bank {
	var out []domain.Bank
	for _, b := range domain.Banks() {
		if c.Bank(b).Enabled() {
			out = append(out, b)
		}
	}
	return out
}

// IsDevelopment retorna true se estiver em ambiente de desenvolvimento
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (c *Config) normalize() {
	if c.Banks == nil {
		c.Banks = make(map[string]BankConfig)
	}
	for id, b := range c.Banks {
		b.Endpoint = strings.TrimRight(b.Endpoint, "/")
		b.AuthEndpoint = strings.TrimRight(b.AuthEndpoint, "/")
		if b.Timeout <= 0 {
			b.Timeout = DefaultUpstreamTimeout
		}
		c.Banks[id] = b
	}
}

// validate verifica se as configurações obrigatórias estão presentes
func (c *Config) validate() error {
	for id, b := range c.Banks {
		if _, ok := domain.ParseBank(id); !ok {
			return fmt.Errorf("banco desconhecido na configuração: %q", id)
		}
		if !b.Enabled() && (b.Cert != "" || b.AuthEndpoint != "") {
			return fmt.Errorf("%sENDPOINT é obrigatório", domain.Bank(id).EnvPrefix())
		}
	}
	if len(c.EnabledBanks()) == 0 {
		return errors.New("nenhum banco configurado: defina ao menos um <BANCO>_ENDPOINT")
	}
	if c.Certs.Root == "" {
		return errors.New("CERTS_DIR é obrigatório")
	}
	return nil
}

// envKey converte o nome de uma variável de ambiente em chave do koanf.
// Variáveis fora do contrato retornam "" e são ignoradas.
func envKey(s string) string {
	if key, ok := globalEnv[s]; ok {
		return key
	}
	for _, b := range domain.Banks() {
		prefix := b.EnvPrefix()
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		field, ok := bankFields[strings.ToLower(strings.TrimPrefix(s, prefix))]
		if !ok {
			return ""
		}
		return "banks." + string(b) + "." + field
	}
	return ""
}

// envFile escolhe o arquivo .env conforme o ambiente
func envFile(appEnv string) string {
	switch appEnv {
	case EnvDevelopment:
		return ".env.dev"
	case EnvTest:
		return ".env.test"
	}
	return ".env"
}

func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		_ = k.Set(key, value)
	}
}
