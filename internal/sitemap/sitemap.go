// Package sitemap renders the sitemaps.org XML document for the site:
// static routes, one page per category, one page per emoji.
package sitemap

import (
	"context"
	"encoding/xml"
	"log"
	"time"

	"github.com/kitmoji/api/internal/model"
	"github.com/kitmoji/api/internal/slug"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// DataSource is the slice of the store the generator needs.
type DataSource interface {
	Categories(ctx context.Context) ([]string, error)
	All(ctx context.Context) ([]model.Emoji, error)
}

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type staticRoute struct {
	path       string
	changeFreq string
	priority   string
}

var staticRoutes = []staticRoute{
	{"/", "daily", "1.0"},
	{"/unicode", "weekly", "0.9"},
	{"/all-emojis", "weekly", "0.9"},
	{"/popular-emojis", "weekly", "0.9"},
	{"/new-emojis", "monthly", "0.8"},
}

// Build renders the full document. On a store failure it degrades to a
// minimal document with just the home page rather than failing the batch.
func Build(ctx context.Context, src DataSource, baseURL string, now time.Time) []byte {
	lastMod := now.UTC().Format(time.RFC3339)

	set := URLSet{Xmlns: xmlns}
	for _, r := range staticRoutes {
		set.URLs = append(set.URLs, URL{
			Loc:        baseURL + r.path,
			LastMod:    lastMod,
			ChangeFreq: r.changeFreq,
			Priority:   r.priority,
		})
	}

	categories, err := src.Categories(ctx)
	if err != nil {
		log.Printf("Sitemap: categories query failed, emitting fallback: %v", err)
		return render(minimal(baseURL, lastMod))
	}
	for _, category := range categories {
		s := slug.Make(category)
		if s == "" {
			continue
		}
		set.URLs = append(set.URLs, URL{
			Loc:        baseURL + "/category/" + s,
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	emojis, err := src.All(ctx)
	if err != nil {
		log.Printf("Sitemap: emoji query failed, emitting fallback: %v", err)
		return render(minimal(baseURL, lastMod))
	}
	for _, e := range emojis {
		s := slug.Make(e.Name)
		if s == "" {
			continue
		}
		set.URLs = append(set.URLs, URL{
			Loc:        baseURL + "/emoji/" + s,
			LastMod:    lastMod,
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}

	return render(set)
}

func minimal(baseURL, lastMod string) URLSet {
	return URLSet{
		Xmlns: xmlns,
		URLs: []URL{{
			Loc:        baseURL + "/",
			LastMod:    lastMod,
			ChangeFreq: "daily",
			Priority:   "1.0",
		}},
	}
}

func render(set URLSet) []byte {
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		// Marshalling a static struct cannot realistically fail; keep the
		// contract of always returning a parseable document anyway.
		return []byte(xml.Header + `<urlset xmlns="` + xmlns + `"></urlset>`)
	}
	return append([]byte(xml.Header), body...)
}
