package extract

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"regexp"
	"strings"

	"slidesmith/internal/types"
)

var (
	streamRe = regexp.MustCompile(`(?s)stream\r?\n(.*?)endstream`)
	textOpRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*T[jJ]`)
)

// extractPDF is a best-effort text pull: it inflates content streams and
// collects the strings fed to the Tj/TJ text-showing operators. Encrypted
// or image-only PDFs yield an error rather than silent emptiness.
func extractPDF(doc types.ReferenceDocument) ([]types.ExtractedUnit, error) {
	var units []types.ExtractedUnit
	pos := 0
	for _, m := range streamRe.FindAllSubmatch(doc.Content, -1) {
		data := m[1]
		if inflated, err := inflate(data); err == nil {
			data = inflated
		}
		texts := textOps(data)
		if len(texts) == 0 {
			continue
		}
		pos++
		title := ""
		body := texts
		if len(texts) > 1 {
			title = texts[0]
			body = texts[1:]
		}
		units = append(units, types.ExtractedUnit{
			Position:   pos,
			Title:      title,
			Body:       strings.Join(body, "\n"),
			LayoutType: "page",
			SourceFile: doc.Filename,
			SourceKind: string(types.KindPDF),
		})
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("pdf %s: no extractable text", doc.Filename)
	}
	return units, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func textOps(data []byte) []string {
	var texts []string
	for _, m := range textOpRe.FindAllSubmatch(data, -1) {
		s := unescapePDFString(string(m[1]))
		if s = strings.TrimSpace(s); s != "" {
			texts = append(texts, s)
		}
	}
	return texts
}

func unescapePDFString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
