package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/set-night/cafeloyalty/internal/domain"
)

// PreviewService turns a web page link into the page's preview image.
type PreviewService struct {
	httpClient *http.Client
}

func NewPreviewService() *PreviewService {
	return &PreviewService{httpClient: &http.Client{Timeout: config.PreviewTimeout}}
}

var previewSelectors = []string{
	`meta[property="og:image"]`,
	`meta[property="og:image:url"]`,
	`meta[name="twitter:image"]`,
	`link[rel="image_src"]`,
}

// ResolveImage returns rawURL itself when it already serves an image, or the
// absolute preview image URL declared by the HTML page at rawURL.
func (s *PreviewService) ResolveImage(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return "", fmt.Errorf("%w: %q is not an http url", domain.ErrNoPicture, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,image/*;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", domain.ErrNoPicture, resp.StatusCode)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "image/") {
		return pageURL.String(), nil
	}
	if mediaType != "text/html" && mediaType != "application/xhtml+xml" {
		return "", fmt.Errorf("%w: unsupported content type %q", domain.ErrNoPicture, mediaType)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, config.PreviewMaxBody))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return findPreviewImage(doc, pageURL)
}

func findPreviewImage(doc *goquery.Document, base *url.URL) (string, error) {
	for _, sel := range previewSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			v, ok := el.Attr("content")
			if !ok {
				v, ok = el.Attr("href")
			}
			v = strings.TrimSpace(v)
			if ok && v != "" {
				found = v
				return false
			}
			return true
		})
		if found == "" {
			continue
		}
		ref, err := url.Parse(found)
		if err != nil {
			continue
		}
		return base.ResolveReference(ref).String(), nil
	}
	return "", domain.ErrNoPicture
}
