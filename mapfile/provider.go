package mapfile

import (
	"sync"

	"github.com/soaklib/soak/metadata"
)

// Provider serves definitions from a mapping directory. The directory is
// read lazily on first use and the parsed set is cached until Invalidate is
// called, so a provider can sit behind a registry or a definition cache
// without re-reading disk per lookup. Safe for concurrent use.
type Provider struct {
	dir string

	mu     sync.Mutex
	loaded bool
	defs   map[string]*metadata.Def
	names  []string
}

// NewProvider returns a provider reading mapping files under dir.
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// Names lists every entity name defined under the provider directory.
func (p *Provider) Names() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.load(); err != nil {
		return nil, err
	}
	return append([]string(nil), p.names...), nil
}

// DefFor returns the definition for one entity name.
func (p *Provider) DefFor(name string) (*metadata.Def, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.load(); err != nil {
		return nil, err
	}
	def, ok := p.defs[name]
	if !ok {
		return nil, &metadata.NotRegisteredError{Name: name}
	}
	return def, nil
}

// Invalidate drops the cached set. The next lookup reloads from disk, which
// makes Invalidate the natural callback target for a directory watcher.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = false
	p.defs = nil
	p.names = nil
}

// load reads the mapping set if it is not already cached. The caller holds mu.
func (p *Provider) load() error {
	if p.loaded {
		return nil
	}
	defs, err := LoadDir(p.dir)
	if err != nil {
		return err
	}
	p.defs = make(map[string]*metadata.Def, len(defs))
	p.names = make([]string, 0, len(defs))
	for _, def := range defs {
		p.defs[def.Name] = def
		p.names = append(p.names, def.Name)
	}
	p.loaded = true
	return nil
}

var _ metadata.DefSource = (*Provider)(nil)
