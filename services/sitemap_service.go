package services

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strings"

	"shopmart/models"
)

// SitemapCatalog lists the public catalog entries a sitemap covers.
type SitemapCatalog interface {
	ListActiveProducts() ([]models.Product, error)
	GetAllCategories() ([]models.Category, error)
}

// SitemapService renders a sitemap.xml for the storefront. Regenerated from
// cron rather than per request; the output file is served statically.
type SitemapService struct {
	catalog SitemapCatalog
}

func NewSitemapService(catalog SitemapCatalog) *SitemapService {
	return &SitemapService{catalog: catalog}
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Generate returns the sitemap document and its URL count: the landing and
// listing pages, every active product (with its last update date) and every
// active category.
func (s *SitemapService) Generate(baseURL string) ([]byte, int, error) {
	base := strings.TrimRight(baseURL, "/")

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs,
		sitemapURL{Loc: base + "/"},
		sitemapURL{Loc: base + "/products"},
	)

	products, err := s.catalog.ListActiveProducts()
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	for i := range products {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     fmt.Sprintf("%s/products/%d", base, products[i].ID),
			LastMod: products[i].UpdatedAt.Format("2006-01-02"),
		})
	}

	categories, err := s.catalog.GetAllCategories()
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	for i := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc: fmt.Sprintf("%s/categories/%d", base, categories[i].ID),
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, 0, err
	}
	return append([]byte(xml.Header), body...), len(set.URLs), nil
}

// WriteFile generates the sitemap and writes it to path.
func (s *SitemapService) WriteFile(baseURL, path string) (int, error) {
	body, count, err := s.Generate(baseURL)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return 0, err
	}
	return count, nil
}
