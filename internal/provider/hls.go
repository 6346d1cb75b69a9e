package provider

import (
	"bufio"
	"bytes"
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/ytget/anime-downloader/internal/model"
)

const streamInfTag = "#EXT-X-STREAM-INF:"

type hlsVariant struct {
	URL        string
	Resolution model.Quality
}

// hlsVariants expands a master playlist into one entry per rendition.
// A media playlist yields no variants.
func (a *AllAnime) hlsVariants(ctx context.Context, playlistURL, referer string) ([]hlsVariant, error) {
	body, err := a.get(ctx, playlistURL, referer)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(playlistURL)
	if err != nil {
		return nil, err
	}
	return parseMasterPlaylist(body, base), nil
}

func parseMasterPlaylist(body []byte, base *url.URL) []hlsVariant {
	var variants []hlsVariant
	var pending *hlsVariant

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, streamInfTag):
			pending = &hlsVariant{Resolution: resolutionAttr(strings.TrimPrefix(line, streamInfTag))}
		case line == "" || strings.HasPrefix(line, "#"):
		case pending != nil:
			ref, err := url.Parse(line)
			if err == nil {
				pending.URL = base.ResolveReference(ref).String()
				variants = append(variants, *pending)
			}
			pending = nil
		}
	}
	return variants
}

// resolutionAttr extracts the height from RESOLUTION=WxH
func resolutionAttr(attrs string) model.Quality {
	for _, attr := range strings.Split(attrs, ",") {
		k, v, ok := strings.Cut(attr, "=")
		if !ok || strings.TrimSpace(k) != "RESOLUTION" {
			continue
		}
		_, h, ok := strings.Cut(v, "x")
		if !ok {
			return 0
		}
		n, err := strconv.Atoi(strings.TrimSpace(h))
		if err != nil {
			return 0
		}
		return model.Quality(n)
	}
	return 0
}
