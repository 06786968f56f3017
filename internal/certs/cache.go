package certs

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

const defaultCacheSize = 64

// agentCache guarda agentes já construídos por (banco, empresa).
// Apenas agentes válidos entram no cache; falhas são sempre reavaliadas.
type agentCache struct {
	lru *expirable.LRU[string, *Agent]
}

func newAgentCache(size int, ttl time.Duration) *agentCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &agentCache{lru: expirable.NewLRU[string, *Agent](size, nil, ttl)}
}

func (c *agentCache) get(key string) (*Agent, bool) {
	return c.lru.Get(key)
}

func (c *agentCache) add(key string, agent *Agent) {
	c.lru.Add(key, agent)
}

func (c *agentCache) remove(key string) {
	c.lru.Remove(key)
}

func (c *agentCache) len() int {
	return c.lru.Len()
}

func cacheKey(b domain.Bank, tenant string) string {
	return string(b) + "/" + tenant
}
