package testutil

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Capture is one request seen by MockServer, keyed by the token and
// Bot API method parsed from its path.
type Capture struct {
	Method      string
	Path        string
	Token       string
	APIMethod   string
	Headers     http.Header
	Body        []byte
	ContentType string
	Timestamp   time.Time
}

// Upload is a decoded multipart request body.
type Upload struct {
	Fields map[string]string
	Files  map[string]UploadedFile
}

// UploadedFile is a single file part of an Upload.
type UploadedFile struct {
	Name string
	Data []byte
}

func (c *Capture) AssertContentType(t *testing.T, expected string) {
	t.Helper()
	assert.Contains(t, c.ContentType, expected, "content type of %s", c.APIMethod)
}

func (c *Capture) AssertJSONField(t *testing.T, field string, expected any) {
	t.Helper()
	got, ok := c.JSON(t)[field]
	if !assert.True(t, ok, "%s: field %q not sent", c.APIMethod, field) {
		return
	}
	assert.Equal(t, expected, got, "%s: field %q", c.APIMethod, field)
}

// JSON decodes the body as a JSON object. Numbers come back as float64.
func (c *Capture) JSON(t *testing.T) map[string]any {
	t.Helper()
	fields := map[string]any{}
	require.NoError(t, json.Unmarshal(c.Body, &fields), "%s: body is not a JSON object", c.APIMethod)
	return fields
}

// Multipart decodes a multipart/form-data body, as sent by setWebhook
// when a certificate is attached.
func (c *Capture) Multipart(t *testing.T) Upload {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(c.ContentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType, "%s: not a multipart body", c.APIMethod)

	form, err := multipart.NewReader(strings.NewReader(string(c.Body)), params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)
	defer form.RemoveAll()

	up := Upload{Fields: map[string]string{}, Files: map[string]UploadedFile{}}
	for name, values := range form.Value {
		if len(values) > 0 {
			up.Fields[name] = values[0]
		}
	}
	for name, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		require.NoError(t, err)
		data, err := io.ReadAll(f)
		f.Close()
		require.NoError(t, err)
		up.Files[name] = UploadedFile{Name: headers[0].Filename, Data: data}
	}
	return up
}

func (c *Capture) BodyString() string {
	return string(c.Body)
}
