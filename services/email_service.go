package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"strings"

	"cotizador/models"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"gorm.io/gorm"
)

// Attachment is a file carried by an outgoing email, held in memory for
// the duration of a single send.
type Attachment struct {
	Filename string
	Content  []byte
}

// Transport abstracts the SMTP call so the dispatcher can be tested
// without a mail server.
type Transport interface {
	SendMail(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

type smtpTransport struct{}

func (smtpTransport) SendMail(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	return smtp.SendMail(addr, a, from, to, msg)
}

// EmailService dispatches quote emails over SMTP and keeps the
// append-only EmailLog.
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	from      string
	fromName  string
	transport Transport
	db        *gorm.DB
}

// NewEmailService reads SMTP settings from the environment.
func NewEmailService(db *gorm.DB) *EmailService {
	es := &EmailService{
		host:      os.Getenv("SMTP_HOST"),
		port:      os.Getenv("SMTP_PORT"),
		username:  os.Getenv("SMTP_USERNAME"),
		password:  os.Getenv("SMTP_PASSWORD"),
		from:      os.Getenv("SMTP_FROM"),
		fromName:  os.Getenv("SMTP_FROM_NAME"),
		transport: smtpTransport{},
		db:        db,
	}
	if es.port == "" {
		es.port = "587"
	}
	if es.fromName == "" {
		es.fromName = "Cotizaciones"
	}
	return es
}

// NewEmailServiceWithTransport is the test constructor.
func NewEmailServiceWithTransport(db *gorm.DB, from string, transport Transport) *EmailService {
	return &EmailService{from: from, fromName: "Cotizaciones", transport: transport, db: db}
}

// Send dispatches an HTML email with optional attachments and returns
// the generated message id. A plain-text alternative is derived from the
// HTML body so stripped-down mail clients still get readable content.
// Transport rejections come back as DeliveryError stage "send".
func (es *EmailService) Send(to, subject, htmlBody string, attachments []Attachment) (string, error) {
	messageID := es.newMessageID()
	msg, err := es.buildMessage(messageID, to, subject, htmlBody, attachments)
	if err != nil {
		return "", &DeliveryError{Stage: "send", Err: err}
	}

	var auth smtp.Auth
	if es.username != "" {
		auth = smtp.PlainAuth("", es.username, es.password, es.host)
	}
	addr := es.host + ":" + es.port

	if err := es.transport.SendMail(addr, auth, es.from, []string{to}, msg); err != nil {
		return "", &DeliveryError{Stage: "send", Err: err}
	}
	log.Printf("Email sent to %s (message id %s)", to, messageID)
	return messageID, nil
}

// LogAttempt records a send attempt. Best effort: a failed insert is
// logged and never rolls back the send.
func (es *EmailService) LogAttempt(to, subject, body, attachmentName string) {
	entry := models.EmailLog{
		To:          to,
		Subject:     subject,
		Body:        body,
		Attachments: attachmentName,
	}
	if err := es.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to record email log for %s: %v", to, err)
	}
}

func (es *EmailService) newMessageID() string {
	domain := "localhost"
	if at := strings.LastIndex(es.from, "@"); at >= 0 && at < len(es.from)-1 {
		domain = es.from[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

func (es *EmailService) buildMessage(messageID, to, subject, htmlBody string, attachments []Attachment) ([]byte, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", es.fromName), es.from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	// Body: plain-text + HTML alternative
	altBuf := &bytes.Buffer{}
	alt := multipart.NewWriter(altBuf)

	bodyPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
	})
	if err != nil {
		return nil, err
	}

	plain, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="utf-8"`},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprint(plain, ConvertHTMLToText(htmlBody))

	htmlPart, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="utf-8"`},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprint(htmlPart, htmlBody)

	if err := alt.Close(); err != nil {
		return nil, err
	}
	if _, err := bodyPart.Write(altBuf.Bytes()); err != nil {
		return nil, err
	}

	for _, att := range attachments {
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("application/pdf; name=%q", att.Filename)},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(att.Content)
		// RFC 2045 line length limit
		for len(encoded) > 76 {
			fmt.Fprintf(part, "%s\r\n", encoded[:76])
			encoded = encoded[76:]
		}
		fmt.Fprintf(part, "%s\r\n", encoded)
	}

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertHTMLToText converts HTML content to plain text for the mail
// alternative part.
func ConvertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "style", "script", "head", "title":
				return
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("• ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}
	extractText(doc)

	result := text.String()
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(result)
}
