package health

import "sync"

// Readiness 就绪状态聚合：所有登记的组件均就绪时才就绪
type Readiness struct {
	mu         sync.RWMutex
	components map[string]bool
}

func New() *Readiness { return &Readiness{components: make(map[string]bool)} }

// Set 登记或更新组件状态
func (r *Readiness) Set(component string, ready bool) {
	r.mu.Lock()
	r.components[component] = ready
	r.mu.Unlock()
}

// Ready 总体就绪；没有登记任何组件时为 false
func (r *Readiness) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.components) == 0 {
		return false
	}
	for _, ok := range r.components {
		if !ok {
			return false
		}
	}
	return true
}
