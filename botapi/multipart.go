package botapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
)

// multipartPayload is implemented by requests that carry a file.
type multipartPayload interface {
	encodeMultipart() (io.Reader, string, error)
}

// certificateUpload sends setWebhook with the certificate as a file part.
type certificateUpload struct {
	SetWebhookRequest
}

func (c certificateUpload) encodeMultipart() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{"url": c.URL}
	if c.MaxConnections > 0 {
		fields["max_connections"] = strconv.Itoa(c.MaxConnections)
	}
	if c.DropPendingUpdates {
		fields["drop_pending_updates"] = "true"
	}
	if c.SecretToken != "" {
		fields["secret_token"] = c.SecretToken
	}
	if len(c.AllowedUpdates) > 0 {
		data, err := json.Marshal(c.AllowedUpdates)
		if err != nil {
			return nil, "", err
		}
		fields["allowed_updates"] = string(data)
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("param %s: %w", name, err)
		}
	}

	name := c.CertificateName
	if name == "" {
		name = "certificate.pem"
	}
	part, err := w.CreateFormFile("certificate", name)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(c.Certificate); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
