// Package rfc822 はRFC 822形式のメッセージの組み立てと解析を行う。
package rfc822

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"

	"sealed-mail/internal/domain"
)

// Message は組み立てるメッセージの内容。
type Message struct {
	From              domain.EmailMessageAddress
	To                []domain.EmailMessageAddress
	Cc                []domain.EmailMessageAddress
	Bcc               []domain.EmailMessageAddress
	ReplyTo           []domain.EmailMessageAddress
	Subject           string
	Body              string
	Attachments       []domain.EmailAttachment
	InlineAttachments []domain.EmailAttachment
	InReplyTo         *string
	References        []string
	Date              time.Time
}

// FromSendInput は送信入力からメッセージを生成する。
func FromSendInput(in domain.SendEmailMessageInput, date time.Time) *Message {
	return &Message{
		From:              in.Header.From,
		To:                in.Header.To,
		Cc:                in.Header.Cc,
		Bcc:               in.Header.Bcc,
		ReplyTo:           in.Header.ReplyTo,
		Subject:           in.Header.Subject,
		Body:              in.Body,
		Attachments:       in.Attachments,
		InlineAttachments: in.InlineAttachments,
		Date:              date,
	}
}

// RecipientCount は To、Cc、Bcc の合計数を返す。
func (m *Message) RecipientCount() int {
	return len(m.To) + len(m.Cc) + len(m.Bcc)
}

func toMailAddresses(in []domain.EmailMessageAddress) []*mail.Address {
	out := make([]*mail.Address, 0, len(in))
	for _, a := range in {
		addr := &mail.Address{Address: a.EmailAddress}
		if a.DisplayName != nil {
			addr.Name = *a.DisplayName
		}
		out = append(out, addr)
	}
	return out
}

// Build はメッセージをRFC 822形式のバイト列に組み立てる。
func Build(m *Message) ([]byte, error) {
	var h mail.Header
	h.SetDate(m.Date)
	h.SetSubject(m.Subject)
	h.SetAddressList("From", toMailAddresses([]domain.EmailMessageAddress{m.From}))
	if len(m.To) > 0 {
		h.SetAddressList("To", toMailAddresses(m.To))
	}
	if len(m.Cc) > 0 {
		h.SetAddressList("Cc", toMailAddresses(m.Cc))
	}
	if len(m.Bcc) > 0 {
		h.SetAddressList("Bcc", toMailAddresses(m.Bcc))
	}
	if len(m.ReplyTo) > 0 {
		h.SetAddressList("Reply-To", toMailAddresses(m.ReplyTo))
	}
	if m.InReplyTo != nil {
		h.SetMsgIDList("In-Reply-To", []string{*m.InReplyTo})
	}
	if len(m.References) > 0 {
		h.SetMsgIDList("References", m.References)
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generating message id: %w", err)
	}

	var buf bytes.Buffer
	if len(m.Attachments) == 0 && len(m.InlineAttachments) == 0 {
		h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
		w, err := mail.CreateSingleInlineWriter(&buf, h)
		if err != nil {
			return nil, fmt.Errorf("creating message writer: %w", err)
		}
		if _, err := io.WriteString(w, m.Body); err != nil {
			return nil, fmt.Errorf("writing body: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("closing message writer: %w", err)
		}
		return buf.Bytes(), nil
	}

	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("creating inline writer: %w", err)
	}
	var th mail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	pw, err := tw.CreatePart(th)
	if err != nil {
		return nil, fmt.Errorf("creating body part: %w", err)
	}
	if _, err := io.WriteString(pw, m.Body); err != nil {
		return nil, fmt.Errorf("writing body: %w", err)
	}
	if err := pw.Close(); err != nil {
		return nil, fmt.Errorf("closing body part: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing inline writer: %w", err)
	}

	for _, a := range m.InlineAttachments {
		if err := writeAttachment(mw, a, "inline"); err != nil {
			return nil, err
		}
	}
	for _, a := range m.Attachments {
		if err := writeAttachment(mw, a, "attachment"); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing message writer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAttachment(mw *mail.Writer, a domain.EmailAttachment, disposition string) error {
	var ah mail.AttachmentHeader
	mimeType := a.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	ah.SetContentType(mimeType, nil)
	ah.SetContentDisposition(disposition, map[string]string{"filename": a.FileName})
	ah.Set("Content-Transfer-Encoding", "base64")
	if a.ContentID != "" {
		ah.Set("Content-Id", "<"+a.ContentID+">")
	}

	w, err := mw.CreateAttachment(ah)
	if err != nil {
		return fmt.Errorf("creating attachment %q: %w", a.FileName, err)
	}
	if _, err := w.Write(a.Data); err != nil {
		return fmt.Errorf("writing attachment %q: %w", a.FileName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing attachment %q: %w", a.FileName, err)
	}
	return nil
}
