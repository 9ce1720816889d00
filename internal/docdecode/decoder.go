// Package docdecode extracts plain text and hyperlink targets from source
// documents. DOCX files are ZIP containers: the main body lives in
// word/document.xml and hyperlink targets are resolved through the
// relationship part word/_rels/document.xml.rels.
package docdecode

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrDecode marks unreadable or structurally corrupt input (non-ZIP DOCX,
// broken XML). Missing-but-expected parts are not decode errors.
var ErrDecode = errors.New("decode error")

// Decoded is the result of decoding one document.
type Decoded struct {
	Text string
	URLs []string // deduplicated, sorted content URLs
}

// URL prefixes excluded from results: XML namespace and schema references
// embedded by the DOCX format itself.
var excludePrefixes = []string{
	"http://schemas.",
	"https://schemas.",
	"http://www.w3.org/",
}

// Fallback matcher for URLs appearing in the raw body XML. Some hyperlinks
// are not captured as structured w:hyperlink elements, so the raw scan
// supplements the relationship walk. Schema URLs are filtered afterwards
// because Go regexps have no lookahead.
var urlPattern = regexp.MustCompile(`https?://[A-Za-z0-9._%-]+(?:/[A-Za-z0-9._%!/?=&+#-]*)?`)

const (
	documentPart      = "word/document.xml"
	relationshipsPart = "word/_rels/document.xml.rels"
)

// DecodeText decodes a plaintext document: the input is the text itself and
// carries no hyperlinks.
func DecodeText(r io.Reader) (*Decoded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading text document: %w", err)
	}
	return &Decoded{Text: string(data)}, nil
}

// DecodeDocx extracts the body text and all content URLs from a DOCX file.
func DecodeDocx(path string) (*Decoded, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a readable DOCX archive: %v", ErrDecode, filepath.Base(path), err)
	}
	defer zr.Close()

	docXML, err := readZipPart(&zr.Reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: missing or unreadable %s: %v", ErrDecode, documentPart, err)
	}

	text, relIDs, err := parseDocumentBody(docXML)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrDecode, documentPart, err)
	}

	// An absent or empty relationships part yields an empty hyperlink set
	// for that part, never a failure.
	targets := map[string]string{}
	if relsXML, err := readZipPart(&zr.Reader, relationshipsPart); err == nil {
		targets, err = parseRelationships(relsXML)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", ErrDecode, relationshipsPart, err)
		}
	}

	var urls []string
	for _, id := range relIDs {
		target, ok := targets[id]
		if !ok {
			continue
		}
		if !strings.HasPrefix(target, "http") && !strings.HasPrefix(target, "www") {
			continue
		}
		urls = append(urls, target)
	}

	// Supplement with URLs found in the raw body XML.
	urls = append(urls, urlPattern.FindAllString(string(docXML), -1)...)

	return &Decoded{Text: text, URLs: normalizeURLs(urls)}, nil
}

func readZipPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, file := range zr.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("part %s not found", name)
}

// parseDocumentBody walks the body XML, collecting paragraph text (one line
// per paragraph) and the relationship IDs of structured hyperlink elements
// in document order.
func parseDocumentBody(docXML []byte) (string, []string, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var sb strings.Builder
	var relIDs []string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "hyperlink":
				for _, attr := range t.Attr {
					if attr.Name.Local == "id" {
						relIDs = append(relIDs, attr.Value)
					}
				}
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return "", nil, err
				}
				sb.WriteString(text)
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				sb.WriteByte('\n')
			}
		}
	}

	return sb.String(), relIDs, nil
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func parseRelationships(relsXML []byte) (map[string]string, error) {
	var rels relationshipsXML
	if err := xml.Unmarshal(relsXML, &rels); err != nil {
		return nil, err
	}

	targets := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		targets[rel.ID] = rel.Target
	}
	return targets, nil
}

// normalizeURLs drops excluded schema URLs, deduplicates, and sorts.
func normalizeURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	var out []string

	for _, url := range urls {
		if url == "" || isExcluded(url) {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}

	sort.Strings(out)
	return out
}

func isExcluded(url string) bool {
	for _, prefix := range excludePrefixes {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}
