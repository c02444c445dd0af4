package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"slidesmith/internal/types"
)

var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPPTX reads slide XML parts from the OOXML container and collects
// their text runs. The first run of each slide is treated as its title.
func extractPPTX(doc types.ReferenceDocument) ([]types.ExtractedUnit, error) {
	zr, err := zip.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}

	type slidePart struct {
		num  int
		file *zip.File
	}
	var parts []slidePart
	for _, f := range zr.File {
		m := slidePathRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, slidePart{num: n, file: f})
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("pptx %s: no slides", doc.Filename)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].num < parts[j].num })

	units := make([]types.ExtractedUnit, 0, len(parts))
	for i, p := range parts {
		rc, err := p.file.Open()
		if err != nil {
			return nil, fmt.Errorf("pptx %s slide %d: %w", doc.Filename, p.num, err)
		}
		texts, err := slideTexts(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("pptx %s slide %d: %w", doc.Filename, p.num, err)
		}

		title := ""
		body := texts
		if len(texts) > 0 {
			title = texts[0]
			body = texts[1:]
		}
		layout := "bullet"
		if len(body) == 0 {
			layout = "title"
		}
		units = append(units, types.ExtractedUnit{
			Position:   i + 1,
			Title:      title,
			Body:       strings.Join(body, "\n"),
			LayoutType: layout,
			SourceFile: doc.Filename,
			SourceKind: string(types.KindSlideDeck),
		})
	}
	return units, nil
}

// slideTexts collects the character data of every <a:t> element, one entry
// per paragraph run.
func slideTexts(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var texts []string
	inText := false
	var cur strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
				if s := strings.TrimSpace(cur.String()); s != "" {
					texts = append(texts, s)
				}
			}
		}
	}
	return texts, nil
}
