package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/rfc822"
)

func isJSON() bool {
	return output == "json"
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable はヘッダ行とrowsをタブ区切りで表示する。
func printTable(header string, rows func(w io.Writer)) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	return w.Flush()
}

// failureJSON は開封に失敗した項目のJSON表現。
type failureJSON[P any] struct {
	Partial P      `json:"partial"`
	Cause   string `json:"cause"`
}

type listJSON[T, P any] struct {
	Status    string           `json:"status"`
	Items     []T              `json:"items"`
	Failed    []failureJSON[P] `json:"failed,omitempty"`
	NextToken *string          `json:"nextToken,omitempty"`
}

// printList はリスト結果を表示する。開封に失敗した項目は標準エラーに出力する。
func printList[T, P any](r domain.ListAPIResult[T, P], header string, row func(w io.Writer, item T), failedID func(p P) string) error {
	if isJSON() {
		out := listJSON[T, P]{Status: r.Status.String(), Items: r.Items, NextToken: r.NextToken}
		for _, f := range r.Failed {
			out.Failed = append(out.Failed, failureJSON[P]{Partial: f.Partial, Cause: f.Cause.Error()})
		}
		return printJSON(out)
	}

	err := printTable(header, func(w io.Writer) {
		for _, item := range r.Items {
			row(w, item)
		}
	})
	if err != nil {
		return err
	}
	for _, f := range r.Failed {
		fmt.Fprintf(os.Stderr, "failed to unseal %s: %v\n", failedID(f.Partial), f.Cause)
	}
	if r.NextToken != nil {
		fmt.Printf("next token: %s\n", *r.NextToken)
	}
	return nil
}

type batchJSON[S, F any] struct {
	Status  string `json:"status"`
	Success []S    `json:"success,omitempty"`
	Failure []F    `json:"failure,omitempty"`
}

// printBatch は一括操作の結果を表示する。
func printBatch[S, F any](r domain.BatchOperationResult[S, F], verb string, successID func(S) string, failureID func(F) string) error {
	if isJSON() {
		return printJSON(batchJSON[S, F]{Status: string(r.Status), Success: r.SuccessValues, Failure: r.FailureValues})
	}

	if r.IsPartial() {
		fmt.Printf("%s: partially succeeded\n", verb)
		for _, s := range r.SuccessValues {
			fmt.Printf("  ok     %s\n", successID(s))
		}
		for _, f := range r.FailureValues {
			fmt.Printf("  failed %s\n", failureID(f))
		}
		return nil
	}
	switch r.Status {
	case domain.BatchOperationStatusSuccess:
		fmt.Printf("%s: all succeeded\n", verb)
	case domain.BatchOperationStatusFailure:
		fmt.Printf("%s: all failed\n", verb)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func formatAddresses(list []domain.EmailMessageAddress) string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.String())
	}
	return strings.Join(out, ", ")
}

func listInput(limit int, nextToken string) domain.ListInput {
	var in domain.ListInput
	if limit > 0 {
		in.Limit = &limit
	}
	if nextToken != "" {
		in.NextToken = &nextToken
	}
	return in
}

type attachmentJSON struct {
	FileName  string `json:"fileName"`
	ContentID string `json:"contentId,omitempty"`
	MimeType  string `json:"mimeType"`
	Inline    bool   `json:"inline"`
	Size      int    `json:"size"`
}

type summaryJSON struct {
	MessageID   *string          `json:"messageId,omitempty"`
	From        string           `json:"from"`
	To          string           `json:"to,omitempty"`
	Cc          string           `json:"cc,omitempty"`
	Subject     *string          `json:"subject,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	Body        string           `json:"body,omitempty"`
	HTMLBody    string           `json:"htmlBody,omitempty"`
	Attachments []attachmentJSON `json:"attachments,omitempty"`
}

// printParsed はRFC 822データを解析してヘッダ・本文・添付一覧を表示する。
func printParsed(w io.Writer, data []byte) error {
	s, err := rfc822.Parse(data)
	if err != nil {
		return err
	}

	if isJSON() {
		out := summaryJSON{
			MessageID: s.MessageID,
			From:      formatAddresses(s.From),
			To:        formatAddresses(s.To),
			Cc:        formatAddresses(s.Cc),
			Subject:   s.Subject,
			Date:      s.Date,
			Body:      s.Body,
			HTMLBody:  s.HTMLBody,
		}
		for _, a := range s.Attachments {
			out.Attachments = append(out.Attachments, attachmentJSON{
				FileName: a.FileName, ContentID: a.ContentID, MimeType: a.MimeType, Inline: a.Inline, Size: len(a.Data),
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "From:    %s\n", formatAddresses(s.From))
	fmt.Fprintf(w, "To:      %s\n", formatAddresses(s.To))
	if len(s.Cc) > 0 {
		fmt.Fprintf(w, "Cc:      %s\n", formatAddresses(s.Cc))
	}
	fmt.Fprintf(w, "Subject: %s\n", deref(s.Subject))
	if s.Date != nil {
		fmt.Fprintf(w, "Date:    %s\n", formatTime(*s.Date))
	}
	for _, a := range s.Attachments {
		kind := "attachment"
		if a.Inline {
			kind = "inline"
		}
		fmt.Fprintf(w, "[%s] %s (%s, %d bytes)\n", kind, a.FileName, a.MimeType, len(a.Data))
	}
	fmt.Fprintln(w)
	body := s.Body
	if body == "" {
		body = s.HTMLBody
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(body, "\r\n"))
	return err
}
