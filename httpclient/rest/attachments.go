package rest

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"sort"
	"strings"

	"github.com/kbukum/restauth/httpclient"
)

// File is one part of a multipart upload.
type File struct {
	// FieldName is the form field, "file" for Jira attachments.
	FieldName string
	FileName  string
	// ContentType defaults to application/octet-stream.
	ContentType string
	Data        []byte
}

// Attachment is an attachment record returned by Jira.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// AttachFiles uploads files to an issue. Jira requires the
// X-Atlassian-Token: no-check header on this endpoint.
func AttachFiles(ctx context.Context, c *Client, issueKey string, files ...File) ([]Attachment, error) {
	for i := range files {
		if files[i].FieldName == "" {
			files[i].FieldName = "file"
		}
	}
	path := "/rest/api/2/issue/" + url.PathEscape(issueKey) + "/attachments"
	resp, err := PostMultipart[[]Attachment](ctx, c, path, nil, files,
		WithHeaders(map[string]string{"X-Atlassian-Token": "no-check"}))
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// PostMultipart sends fields and files as multipart/form-data and decodes
// the JSON response into T. The body is built in memory.
func PostMultipart[T any](ctx context.Context, c *Client, path string, fields map[string]string, files []File, opts ...RequestOption) (*Response[T], error) {
	body, contentType, err := encodeMultipart(fields, files)
	if err != nil {
		return nil, fmt.Errorf("rest: encode multipart: %w", err)
	}

	req := httpclient.Request{
		Method: httpclient.MethodPost,
		URL:    path,
		Body:   body,
		Headers: map[string]string{
			"Accept":       "application/json",
			"Content-Type": contentType,
		},
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.http.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeResponse[T](resp)
}

// encodeMultipart writes fields in key order, then files in the given order.
func encodeMultipart(fields map[string]string, files []File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range files {
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
