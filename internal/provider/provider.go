// Package provider defines the catalog contract consumed by the app and the
// AllAnime implementation of it.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ytget/anime-downloader/internal/model"
)

// ErrNotFound marks "nothing available" conditions: no episode data, no
// stream for the requested episode or language.
var ErrNotFound = errors.New("not found")

// Provider is an anime catalog
type Provider interface {
	// Name returns the provider identifier, e.g. "allanime"
	Name() string

	// Search returns catalog entries matching query, in display order
	Search(ctx context.Context, query string) ([]model.SearchResult, error)

	// Episodes returns the episode numbers available for lang, ascending
	Episodes(ctx context.Context, id string, lang model.Language) ([]model.EpisodeNumber, error)

	// Streams returns every playable stream for the episode. It returns an
	// error wrapping ErrNotFound when the provider has none.
	Streams(ctx context.Context, id string, episode model.EpisodeNumber, lang model.Language) ([]model.Stream, error)
}

// Entity is the handle for a selected catalog entry
type Entity struct {
	provider  Provider
	Name      string
	ID        string
	Languages model.LanguageSet
}

// NewEntity builds an entity handle. An empty language set defaults to SUB.
func NewEntity(p Provider, name, id string, langs model.LanguageSet) (*Entity, error) {
	if p == nil {
		return nil, errors.New("provider is not initialized")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("anime name not found in search result")
	}
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("anime identifier not found in search result")
	}
	if len(langs) == 0 {
		langs = model.NewLanguageSet(model.LanguageSub)
	}

	copied := make(model.LanguageSet, len(langs))
	for l := range langs {
		copied[l] = struct{}{}
	}
	return &Entity{provider: p, Name: name, ID: id, Languages: copied}, nil
}

// EntityFromResult builds an entity from a search result
func EntityFromResult(p Provider, r model.SearchResult) (*Entity, error) {
	return NewEntity(p, r.Name, r.Identifier, r.Languages)
}

// Episodes lists the entity's episodes for lang
func (e *Entity) Episodes(ctx context.Context, lang model.Language) ([]model.EpisodeNumber, error) {
	eps, err := e.provider.Episodes(ctx, e.ID, lang)
	if err != nil {
		return nil, fmt.Errorf("list episodes of %s: %w", e.Name, err)
	}
	return eps, nil
}

// ResolveStream picks a stream for the episode at the preferred quality.
// Missing streams are reported as NotFound, never as an error.
func (e *Entity) ResolveStream(ctx context.Context, episode model.EpisodeNumber, lang model.Language, preferred model.Quality) model.StreamResult {
	streams, err := e.provider.Streams(ctx, e.ID, episode, lang)
	if errors.Is(err, ErrNotFound) {
		return model.NotFound()
	}
	if err != nil {
		return model.Failed(fmt.Errorf("resolve %s %s: %w", e.Name, episode.Label(), err))
	}

	s := SelectQuality(streams, preferred)
	if s == nil {
		return model.NotFound()
	}
	if s.Language == "" {
		s.Language = lang
	}
	return model.Found(s)
}

// SelectQuality returns the stream matching preferred exactly, otherwise the
// highest resolution available. It returns nil for an empty list.
func SelectQuality(streams []model.Stream, preferred model.Quality) *model.Stream {
	if len(streams) == 0 {
		return nil
	}

	sorted := append([]model.Stream(nil), streams...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Resolution > sorted[j].Resolution })

	for i := range sorted {
		if sorted[i].Resolution == preferred {
			return &sorted[i]
		}
	}
	return &sorted[0]
}
