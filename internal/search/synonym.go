package search

import (
	"context"
	"log"
	"strings"
	"sync/atomic"

	"tadreeb/internal/repository"

	"github.com/google/uuid"
)

// Resolver expands a training domain into its set of search terms: the
// domain's English and Arabic names plus any rows in the optional synonym
// table. A missing or broken synonym table only narrows the term set.
type Resolver struct {
	domains repository.SkillDomainRepository
	logger  *log.Logger

	warnedDegraded atomic.Bool
}

func NewResolver(domains repository.SkillDomainRepository, logger *log.Logger) *Resolver {
	return &Resolver{domains: domains, logger: logger}
}

func (r *Resolver) Expand(ctx context.Context, domainIDs []uuid.UUID) map[uuid.UUID][]string {
	out := make(map[uuid.UUID][]string, len(domainIDs))
	if r == nil || r.domains == nil || len(domainIDs) == 0 {
		return out
	}

	ids := dedupIDs(domainIDs)

	domains, err := r.domains.FindByIDs(ctx, ids)
	if err != nil {
		r.warnDegradedOnce("domain lookup", err)
		return out
	}

	terms := make(map[uuid.UUID][]string, len(domains))
	seen := make(map[uuid.UUID]map[string]bool, len(domains))
	add := func(id uuid.UUID, term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		if seen[id] == nil {
			seen[id] = make(map[string]bool)
		}
		key := strings.ToLower(term)
		if seen[id][key] {
			return
		}
		seen[id][key] = true
		terms[id] = append(terms[id], term)
	}

	for _, d := range domains {
		add(d.ID, d.NameEN)
		add(d.ID, d.NameAR)
	}

	synonyms, err := r.domains.SynonymsByDomainIDs(ctx, ids)
	if err != nil {
		// Synonym table not provisioned or unreadable: degrade to names only.
		r.warnDegradedOnce("synonym lookup", err)
	} else {
		for id, list := range synonyms {
			for _, s := range list {
				add(id, s)
			}
		}
	}

	for _, id := range ids {
		out[id] = terms[id]
	}
	return out
}

func (r *Resolver) warnDegradedOnce(what string, err error) {
	if r.logger == nil {
		return
	}
	if r.warnedDegraded.CompareAndSwap(false, true) {
		r.logger.Printf("[Synonym] %s failed, degrading to empty synonyms: %v", what, err)
	}
}

func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
