package mailparse

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/phishlook/phishlook/internal/core"
)

// Content is what the analyzers need out of a raw RFC 5322 message: the plain
// text, the HTML alternative, and per-attachment metadata.
type Content struct {
	Text        string
	HTML        string
	Attachments []core.Attachment
}

// ExtractContent walks the message body, collecting text/plain and text/html
// parts and attachment metadata. Non-multipart messages yield their whole body
// as text (or HTML, for a text/html content type). Extraction is best effort:
// unreadable parts are skipped, not fatal.
func ExtractContent(msg *mail.Message) (*Content, error) {
	contentType := msg.Header.Get("Content-Type")

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return nil, readErr
		}
		content := &Content{}
		if strings.HasPrefix(mediaType, "text/html") {
			content.HTML = string(body)
		} else {
			content.Text = string(body)
		}
		return content, nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return nil, readErr
		}
		return &Content{Text: string(body)}, nil
	}

	content := &Content{}
	collectParts(multipart.NewReader(msg.Body, boundary), content, 0)
	return content, nil
}

// maxMultipartDepth bounds recursion into nested multipart parts.
const maxMultipartDepth = 4

func collectParts(mr *multipart.Reader, content *Content, depth int) {
	var textBuf, htmlBuf bytes.Buffer
	textBuf.WriteString(content.Text)
	htmlBuf.WriteString(content.HTML)

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		partType, partParams, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		disposition, dispParams, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition"))

		if disposition == "attachment" || dispParams["filename"] != "" || partParams["name"] != "" {
			content.Attachments = append(content.Attachments, attachmentFromPart(part, partType, dispParams, partParams))
			continue
		}

		switch {
		case strings.HasPrefix(partType, "text/plain"):
			if data, err := io.ReadAll(part); err == nil {
				textBuf.Write(data)
				textBuf.WriteString("\n")
			}
		case strings.HasPrefix(partType, "text/html"):
			if data, err := io.ReadAll(part); err == nil {
				htmlBuf.Write(data)
			}
		case strings.HasPrefix(partType, "multipart/") && depth < maxMultipartDepth:
			if inner, ok := partParams["boundary"]; ok {
				nested := &Content{}
				collectParts(multipart.NewReader(part, inner), nested, depth+1)
				textBuf.WriteString(nested.Text)
				htmlBuf.WriteString(nested.HTML)
				content.Attachments = append(content.Attachments, nested.Attachments...)
			}
		}
	}

	content.Text = textBuf.String()
	content.HTML = htmlBuf.String()
}

func attachmentFromPart(part *multipart.Part, partType string, dispParams, partParams map[string]string) core.Attachment {
	name := dispParams["filename"]
	if name == "" {
		name = partParams["name"]
	}
	if name == "" {
		name = part.FileName()
	}
	if name == "" {
		name = "unknown"
	}

	// Size is the decoded part length; a read failure leaves it at zero.
	size := int64(0)
	if data, err := io.ReadAll(part); err == nil {
		size = int64(len(data))
	}

	return core.Attachment{
		Name:        name,
		Size:        size,
		ContentType: partType,
	}
}

// DecodeEncodedHeader decodes RFC 2047 encoded-word headers, returning the
// input unchanged when it is not encoded.
func DecodeEncodedHeader(value string) (string, error) {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value, err
	}
	return decoded, nil
}

// RecordFromMessage builds the analyzer input record from a parsed message.
func RecordFromMessage(msg *mail.Message) (*core.EmailRecord, error) {
	content, err := ExtractContent(msg)
	if err != nil {
		return nil, err
	}

	sender := msg.Header.Get("From")
	senderEmail := sender
	if addr, err := mail.ParseAddress(sender); err == nil {
		sender = addr.Name
		senderEmail = addr.Address
	}

	subject := msg.Header.Get("Subject")
	if decoded, err := DecodeEncodedHeader(subject); err == nil {
		subject = decoded
	}

	return &core.EmailRecord{
		Subject:     subject,
		Body:        content.Text,
		HTMLBody:    content.HTML,
		Sender:      sender,
		SenderEmail: senderEmail,
		Attachments: content.Attachments,
	}, nil
}
