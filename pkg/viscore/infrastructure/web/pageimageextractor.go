package web

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"kgeyst.com/viscore/pkg/common"
)

// PageImage an image found on a web page: its absolute URL and the alt text the page's author gave it.
type PageImage struct {
	URL     string
	AltText string
}

// PageImageExtractor scrapes `<img>` tags from a web page. Images with alt text make natural test case
// candidates: the alt text is what the page's author expected the image to show.
type PageImageExtractor struct{}

func NewPageImageExtractor() *PageImageExtractor {
	return &PageImageExtractor{}
}

func (p *PageImageExtractor) ExtractImagesFromURL(pageURL string) ([]PageImage, error) {
	// TODO add timeout
	page, err := common.ReadAllFromURL(pageURL)
	if err != nil {
		return nil, err
	}
	return p.ExtractImages(pageURL, strings.NewReader(string(page)))
}

// ExtractImages parses the HTML from `reader` and returns images with non-empty alt text whose
// source is a supported image format. Relative sources are resolved against `baseURL`.
func (p *PageImageExtractor) ExtractImages(baseURL string, reader io.Reader) ([]PageImage, error) {
	document, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	var images []PageImage
	document.Find("img").Each(func(i int, selection *goquery.Selection) {
		src, ok := selection.Attr("src")
		if !ok || src == "" {
			return
		}
		altText := strings.TrimSpace(selection.AttrOr("alt", ""))
		if altText == "" {
			return
		}
		srcURL, err := url.Parse(src)
		if err != nil {
			return
		}
		absolute := base.ResolveReference(srcURL).String()
		if !common.IsImageFormat(absolute) {
			return
		}
		images = append(images, PageImage{
			URL:     absolute,
			AltText: altText,
		})
	})
	return images, nil
}
