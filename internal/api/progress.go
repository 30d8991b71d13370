package api

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// ProgressFunc receives the upload percentage in [0,100]
type ProgressFunc func(percent int)

// Percent computes round(sent*100/total) clamped to [0,100].
// It returns false when total is unknown.
func Percent(sent, total int64) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	pct := int(math.Round(float64(sent) * 100 / float64(total)))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// progressReader reports bytes handed to the transport
type progressReader struct {
	r          io.Reader
	sent       int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil {
			if pct, ok := Percent(p.sent, p.total); ok {
				p.onProgress(pct)
			}
		}
	}
	return n, err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartUpload is a streamed multipart/form-data body with a single file part
type multipartUpload struct {
	contentType string
	head        []byte
	tail        []byte
}

// newMultipartUpload prepares the framing around the file content for field
func newMultipartUpload(field string, file *File) (*multipartUpload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", "text/csv")

	if _, err := mw.CreatePart(h); err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	head := append([]byte(nil), buf.Bytes()...)

	buf.Reset()
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	tail := append([]byte(nil), buf.Bytes()...)

	return &multipartUpload{
		contentType: mw.FormDataContentType(),
		head:        head,
		tail:        tail,
	}, nil
}

// length returns the full body length, or -1 when the file size is unknown
func (m *multipartUpload) length(fileSize int64) int64 {
	if fileSize < 0 {
		return -1
	}
	return int64(len(m.head)) + fileSize + int64(len(m.tail))
}

// body stitches the framing around content
func (m *multipartUpload) body(content io.Reader) io.Reader {
	return io.MultiReader(bytes.NewReader(m.head), content, bytes.NewReader(m.tail))
}
