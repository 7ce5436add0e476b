// FILE: internal/service/deals.go
package service

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"meridian/internal/deal"
	"meridian/internal/validation"
)

// DealSummary is the listing view of a pooled deal
type DealSummary struct {
	ID          string `json:"id"`
	Mode        string `json:"mode"`
	Difficulty  string `json:"difficulty,omitempty"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Rejection records a deal file that could not join the pool
type Rejection struct {
	Source string
	Err    error
}

type pooled struct {
	summary DealSummary
	deal    *deal.Deal
}

// DealPool holds certified deals by id
type DealPool struct {
	mu    sync.RWMutex
	byID  map[string]*pooled
	order []string
}

func NewDealPool() *DealPool {
	return &DealPool{byID: make(map[string]*pooled)}
}

// Load adds every deal file under paths. Files that fail to parse or
// validate are reported, not fatal.
func (p *DealPool) Load(paths ...string) (int, []Rejection, error) {
	files, err := deal.Files(paths...)
	if err != nil {
		return 0, nil, err
	}

	var rejected []Rejection
	loaded := 0
	for _, f := range files {
		d, err := deal.Load(f)
		if err == nil {
			err = p.Add(f, d)
		}
		if err != nil {
			rejected = append(rejected, Rejection{Source: f, Err: err})
			continue
		}
		loaded++
	}
	return loaded, rejected, nil
}

// Add validates d and pools it under its metadata id, or the file name
// when the id is missing. A later deal with the same id replaces the
// earlier one.
func (p *DealPool) Add(source string, d *deal.Deal) error {
	report := validation.ValidateDeal(d)
	if !report.IsValid {
		return fmt.Errorf("%w: %s", ErrInvalidDeal, report.Errors[0])
	}

	id := d.Metadata.ID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	entry := &pooled{
		summary: DealSummary{
			ID:          id,
			Mode:        string(d.Mode()),
			Difficulty:  d.Metadata.Difficulty,
			Description: d.Metadata.Description,
			Source:      source,
		},
		deal: d,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.byID[id]; !exists {
		p.order = append(p.order, id)
	}
	p.byID[id] = entry
	return nil
}

func (p *DealPool) Get(id string) (*deal.Deal, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	return e.deal, true
}

// List returns pooled deals in load order, optionally only one mode's
func (p *DealPool) List(mode string) []DealSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]DealSummary, 0, len(p.order))
	for _, id := range p.order {
		s := p.byID[id].summary
		if mode == "" || s.Mode == mode {
			out = append(out, s)
		}
	}
	return out
}

func (p *DealPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.order)
}

// IDs returns the pooled ids sorted
func (p *DealPool) IDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := slices.Clone(p.order)
	slices.Sort(ids)
	return ids
}
