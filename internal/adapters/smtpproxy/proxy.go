package smtpproxy

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/phishlook/phishlook/internal/core"
	"go.uber.org/zap"
)

// Proxy is an SMTP content filter: it accepts a message, scores it, injects
// risk headers and re-injects the message into the downstream relay. High-risk
// messages can optionally be rejected outright.
type Proxy struct {
	service       *core.AnalyzerService
	logger        *zap.Logger
	listenAddr    string
	server        *smtp.Server
	blockHighRisk bool
	riskHeader    string
	scoreHeader   string
	reasonHeader  string
	relayAddr     string
	relayPort     int
	relayEnabled  bool
	subjectPrefix string
	modifySubject bool
}

// NewProxy creates a new SMTP proxy frontend
func NewProxy(
	service *core.AnalyzerService,
	logger *zap.Logger,
	listenAddr string,
	blockHighRisk bool,
	riskHeader string,
	scoreHeader string,
	reasonHeader string,
	relayAddr string,
	relayPort int,
	relayEnabled bool,
	subjectPrefix string,
	modifySubject bool,
) *Proxy {
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[**PHISHING?**] "
	}

	return &Proxy{
		service:       service,
		logger:        logger,
		listenAddr:    listenAddr,
		blockHighRisk: blockHighRisk,
		riskHeader:    riskHeader,
		scoreHeader:   scoreHeader,
		reasonHeader:  reasonHeader,
		relayAddr:     relayAddr,
		relayPort:     relayPort,
		relayEnabled:  relayEnabled,
		subjectPrefix: subjectPrefix,
		modifySubject: modifySubject,
	}
}

// Start starts the SMTP proxy
func (p *Proxy) Start() error {
	p.server = smtp.NewServer(&smtpBackend{proxy: p})

	p.server.Addr = p.listenAddr
	p.server.Domain = "localhost"
	p.server.ReadTimeout = 30 * time.Second
	p.server.WriteTimeout = 30 * time.Second
	p.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	p.server.MaxRecipients = 50
	p.server.AllowInsecureAuth = true

	p.logger.Info("SMTP proxy starting", zap.String("address", p.listenAddr))

	go func() {
		if err := p.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				p.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP proxy
func (p *Proxy) Stop() error {
	if p.server != nil {
		return p.server.Close()
	}
	return nil
}

// ProcessEmail analyzes an email directly, bypassing SMTP. Mainly used for
// testing and direct API calls.
func (p *Proxy) ProcessEmail(ctx context.Context, email *core.EmailRecord) (*core.AnalysisResult, error) {
	return p.service.Analyze(ctx, email)
}

// sendToRelay re-injects the processed message into the downstream relay.
func (p *Proxy) sendToRelay(sender string, recipients []string, emailData []byte) error {
	relayAddr := fmt.Sprintf("%s:%d", p.relayAddr, p.relayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			p.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		p.logger.Warn("QUIT command failed", zap.Error(err))
		// The message is already handed off at this point
	}

	return nil
}

// rewriteHeaders writes the risk headers, the (possibly prefixed) subject and
// the remaining original headers into buf.
func (p *Proxy) rewriteHeaders(buf *bytes.Buffer, headers map[string][]string, subject string, result *core.AnalysisResult, analysisErr error) {
	fmt.Fprintf(buf, "%s: %s\r\n", p.riskHeader, result.RiskLevel)
	fmt.Fprintf(buf, "%s: %d\r\n", p.scoreHeader, result.SuspicionScore)
	fmt.Fprintf(buf, "%s: %s\r\n", p.reasonHeader, result.Explanation)

	if analysisErr != nil {
		fmt.Fprintf(buf, "X-Phish-Analysis-Error: %s\r\n", analysisErr.Error())
	}

	prefixSubject := result.RiskLevel == core.RiskHigh && p.modifySubject &&
		p.subjectPrefix != "" && !strings.HasPrefix(subject, p.subjectPrefix)

	if prefixSubject {
		fmt.Fprintf(buf, "Subject: %s%s\r\n", p.subjectPrefix, subject)
	}

	for key, values := range headers {
		if prefixSubject && strings.EqualFold(key, "Subject") {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(buf, "%s: %s\r\n", key, value)
		}
	}

	fmt.Fprintf(buf, "\r\n")
}

// appendOriginalBody copies the raw message body, preserving all MIME parts,
// after the rewritten header block. A message without a header/body separator
// is appended whole so no content is dropped.
func appendOriginalBody(buf *bytes.Buffer, rawData []byte) {
	if idx := bytes.Index(rawData, []byte("\r\n\r\n")); idx != -1 {
		buf.Write(rawData[idx+4:])
		return
	}
	if idx := bytes.Index(rawData, []byte("\n\n")); idx != -1 {
		buf.Write(rawData[idx+2:])
		return
	}
	buf.Write(rawData)
}
