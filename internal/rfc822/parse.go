package rfc822

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"sealed-mail/internal/domain"
)

// Summary はRFC 822データから取り出したヘッダと本文。
type Summary struct {
	MessageID      *string
	From           []domain.EmailMessageAddress
	To             []domain.EmailMessageAddress
	Cc             []domain.EmailMessageAddress
	Bcc            []domain.EmailMessageAddress
	ReplyTo        []domain.EmailMessageAddress
	Subject        *string
	Date           *time.Time
	InReplyTo      *string
	References     []string
	Body           string
	HTMLBody       string
	HasAttachments bool
	Attachments    []domain.EmailAttachment
}

// Parse はRFC 822データを解析する。
func Parse(data []byte) (*Summary, error) {
	mr, err := mail.CreateReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading message: %w", err)
	}
	defer mr.Close()

	s := &Summary{}
	h := mr.Header
	if s.From, err = addressList(h, "From"); err != nil {
		return nil, err
	}
	if s.To, err = addressList(h, "To"); err != nil {
		return nil, err
	}
	if s.Cc, err = addressList(h, "Cc"); err != nil {
		return nil, err
	}
	if s.Bcc, err = addressList(h, "Bcc"); err != nil {
		return nil, err
	}
	if s.ReplyTo, err = addressList(h, "Reply-To"); err != nil {
		return nil, err
	}
	if subject, err := h.Subject(); err == nil && subject != "" {
		s.Subject = &subject
	}
	if date, err := h.Date(); err == nil && !date.IsZero() {
		s.Date = &date
	}
	if id, err := h.MessageID(); err == nil && id != "" {
		s.MessageID = &id
	}
	if ids, err := h.MsgIDList("In-Reply-To"); err == nil && len(ids) > 0 {
		s.InReplyTo = &ids[0]
	}
	if ids, err := h.MsgIDList("References"); err == nil {
		s.References = ids
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading part: %w", err)
		}

		switch ph := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, ctParams, _ := ph.ContentType()
			_, dispParams, _ := ph.ContentDisposition()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("reading inline part: %w", err)
			}
			// ファイル名付き、またはテキスト以外のインライン部分は添付として扱う
			filename := dispParams["filename"]
			if filename == "" {
				filename = ctParams["name"]
			}
			switch {
			case filename != "" || (contentType != "" && !strings.HasPrefix(contentType, "text/")):
				s.HasAttachments = true
				s.Attachments = append(s.Attachments, domain.EmailAttachment{
					FileName:  filename,
					ContentID: strings.Trim(ph.Get("Content-Id"), "<>"),
					MimeType:  contentType,
					Inline:    true,
					Data:      body,
				})
			case strings.HasPrefix(contentType, "text/html"):
				s.HTMLBody = string(body)
			case contentType == "" || strings.HasPrefix(contentType, "text/plain"):
				s.Body = string(body)
			}
		case *mail.AttachmentHeader:
			filename, _ := ph.Filename()
			contentType, _, _ := ph.ContentType()
			disposition, _, _ := ph.ContentDisposition()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("reading attachment %q: %w", filename, err)
			}
			s.HasAttachments = true
			s.Attachments = append(s.Attachments, domain.EmailAttachment{
				FileName:  filename,
				ContentID: strings.Trim(ph.Get("Content-Id"), "<>"),
				MimeType:  contentType,
				Inline:    disposition == "inline",
				Data:      body,
			})
		}
	}
	return s, nil
}

func addressList(h mail.Header, key string) ([]domain.EmailMessageAddress, error) {
	list, err := h.AddressList(key)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", key, err)
	}
	return fromMailAddresses(list), nil
}

func fromMailAddresses(list []*mail.Address) []domain.EmailMessageAddress {
	if len(list) == 0 {
		return nil
	}
	out := make([]domain.EmailMessageAddress, 0, len(list))
	for _, a := range list {
		ea := domain.EmailMessageAddress{EmailAddress: a.Address}
		if a.Name != "" {
			name := a.Name
			ea.DisplayName = &name
		}
		out = append(out, ea)
	}
	return out
}

// ParseAddress は "Name <addr>" 形式または素のアドレスを解析する。
func ParseAddress(s string) (domain.EmailMessageAddress, error) {
	a, err := mail.ParseAddress(s)
	if err != nil {
		return domain.EmailMessageAddress{}, fmt.Errorf("parsing address %q: %w", s, err)
	}
	return fromMailAddresses([]*mail.Address{a})[0], nil
}

// ParseAddresses は文字列の一覧をアドレスとして解析する。
func ParseAddresses(list []string) ([]domain.EmailMessageAddress, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]domain.EmailMessageAddress, 0, len(list))
	for _, s := range list {
		a, err := ParseAddress(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
