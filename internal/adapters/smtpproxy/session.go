package smtpproxy

import (
	"bytes"
	"context"
	"io"
	"net/mail"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/phishlook/phishlook/internal/mailparse"
	"go.uber.org/zap"
)

type smtpBackend struct {
	proxy *Proxy
}

func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		proxy:      b.proxy,
		remoteAddr: c.Conn().RemoteAddr().String(),
	}, nil
}

type smtpSession struct {
	proxy      *Proxy
	remoteAddr string
	from       string
	to         []string
}

func (s *smtpSession) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *smtpSession) Rcpt(to string, opts *smtp.RcptOptions) error {
	s.to = append(s.to, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.proxy.logger.Error("Failed to read message data", zap.Error(err))
		return &smtp.SMTPError{
			Code:    451,
			Message: "Failed to read message",
		}
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.proxy.logger.Error("Failed to parse message",
			zap.String("remote", s.remoteAddr),
			zap.Error(err))
		return &smtp.SMTPError{
			Code:    550,
			Message: "Malformed message",
		}
	}

	email, err := mailparse.RecordFromMessage(msg)
	if err != nil {
		s.proxy.logger.Error("Failed to extract message content",
			zap.String("remote", s.remoteAddr),
			zap.Error(err))
		return &smtp.SMTPError{
			Code:    550,
			Message: "Malformed message",
		}
	}
	if email.Sender == "" {
		email.Sender = s.from
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, analysisErr := s.proxy.service.Analyze(ctx, email)
	if analysisErr != nil {
		s.proxy.logger.Error("Analysis failed, passing message through",
			zap.String("sender", email.Sender),
			zap.Error(analysisErr))
	}

	if result != nil {
		s.proxy.logger.Info("Email analyzed",
			zap.String("sender", email.Sender),
			zap.String("risk_level", string(result.RiskLevel)),
			zap.Int("score", result.SuspicionScore))

		if s.proxy.blockHighRisk && s.proxy.service.IsHighRisk(result) {
			s.proxy.logger.Warn("Rejecting high-risk email",
				zap.String("sender", email.Sender),
				zap.Int("score", result.SuspicionScore))
			return &smtp.SMTPError{
				Code:    550,
				Message: "Message rejected: likely phishing",
			}
		}
	}

	if !s.proxy.relayEnabled {
		return nil
	}

	var buf bytes.Buffer
	if result != nil {
		s.proxy.rewriteHeaders(&buf, msg.Header, email.Subject, result, analysisErr)
		appendOriginalBody(&buf, rawData)
	} else {
		buf.Write(rawData)
	}

	if err := s.proxy.sendToRelay(s.from, s.to, buf.Bytes()); err != nil {
		s.proxy.logger.Error("Failed to relay message",
			zap.String("sender", s.from),
			zap.Error(err))
		return &smtp.SMTPError{
			Code:    451,
			Message: "Failed to relay message",
		}
	}

	return nil
}

func (s *smtpSession) Reset() {
	s.from = ""
	s.to = nil
}

func (s *smtpSession) Logout() error {
	return nil
}
