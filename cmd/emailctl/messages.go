package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/rfc822"
)

func messagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Send, read and manage email messages",
	}
	cmd.AddCommand(
		messageListCmd(),
		messageGetCmd(),
		messageRFC822Cmd(),
		messageSendCmd(),
		messageUpdateCmd(),
		messageDeleteCmd(),
	)
	return cmd
}

func messageListCmd() *cobra.Command {
	var (
		addressID, folderID, nextToken, sortOrder string
		limit                                     int
		includeDeleted                            bool
		since, until                              string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List email messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.ListEmailMessagesInput{
				EmailAddressID:         addressID,
				FolderID:               folderID,
				SortOrder:              domain.SortOrder(sortOrder),
				IncludeDeletedMessages: includeDeleted,
				ListInput:              listInput(limit, nextToken),
			}
			if since != "" || until != "" {
				r, err := parseDateRange(since, until)
				if err != nil {
					return err
				}
				in.DateRange = &domain.EmailMessageDateRange{SortDate: r}
			}

			return run(cmd, func(ctx context.Context, a *app) error {
				list := a.client.ListEmailMessages
				switch {
				case folderID != "":
					list = a.client.ListEmailMessagesForEmailFolderID
				case addressID != "":
					list = a.client.ListEmailMessagesForEmailAddressID
				}
				result, err := list(ctx, in)
				if err != nil {
					return err
				}
				return printList(result, "ID\tDATE\tFROM\tSUBJECT\tSEEN",
					func(w io.Writer, m domain.EmailMessage) {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", m.ID, formatTime(m.SortDate), formatAddresses(m.From), deref(m.Subject), m.Seen)
					},
					func(p domain.PartialEmailMessage) string { return p.ID },
				)
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Only list messages of this email address")
	cmd.Flags().StringVar(&folderID, "folder-id", "", "Only list messages in this folder")
	cmd.Flags().StringVar(&sortOrder, "sort", string(domain.SortOrderDesc), "Sort order: ASC, DESC")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "Include deleted messages")
	cmd.Flags().StringVar(&since, "since", "", "Only messages sorted at or after this time (RFC3339)")
	cmd.Flags().StringVar(&until, "until", "", "Only messages sorted before this time (RFC3339)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&nextToken, "next-token", "", "Pagination token")
	return cmd
}

func parseDateRange(since, until string) (*domain.DateRange, error) {
	r := &domain.DateRange{End: time.Now()}
	if since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return nil, fmt.Errorf("--since: %w", err)
		}
		r.Start = t
	}
	if until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return nil, fmt.Errorf("--until: %w", err)
		}
		r.End = t
	}
	return r, nil
}

func messageGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Get an email message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				m, err := a.client.GetEmailMessage(ctx, args[0])
				if err != nil {
					return err
				}
				if m == nil {
					return fmt.Errorf("email message %s not found", args[0])
				}
				if isJSON() {
					return printJSON(m)
				}
				fmt.Printf("ID:       %s\n", m.ID)
				fmt.Printf("Folder:   %s\n", m.FolderID)
				fmt.Printf("Date:     %s\n", formatTime(m.SortDate))
				fmt.Printf("From:     %s\n", formatAddresses(m.From))
				fmt.Printf("To:       %s\n", formatAddresses(m.To))
				if len(m.Cc) > 0 {
					fmt.Printf("Cc:       %s\n", formatAddresses(m.Cc))
				}
				fmt.Printf("Subject:  %s\n", deref(m.Subject))
				fmt.Printf("State:    %s\n", m.State)
				fmt.Printf("Seen:     %t\n", m.Seen)
				return nil
			})
		},
	}
}

func messageRFC822Cmd() *cobra.Command {
	var (
		addressID, out string
		parsed         bool
	)
	cmd := &cobra.Command{
		Use:   "rfc822 ID",
		Short: "Download the RFC 822 data of an email message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				data, err := a.client.GetEmailMessageRFC822Data(ctx, domain.GetEmailMessageRFC822DataInput{
					ID:             args[0],
					EmailAddressID: addressID,
				})
				if err != nil {
					return err
				}
				if data == nil {
					return fmt.Errorf("email message %s has no body", args[0])
				}
				if parsed {
					return printParsed(os.Stdout, data.RFC822Data)
				}
				if out == "" || out == "-" {
					_, err = os.Stdout.Write(data.RFC822Data)
					return err
				}
				return os.WriteFile(out, data.RFC822Data, 0o600)
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Email address ID of the message (required)")
	cmd.Flags().BoolVar(&parsed, "parsed", false, "Print headers, body and attachment list instead of raw data")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (defaults to stdout)")
	cmd.MarkFlagRequired("address-id")
	return cmd
}

// readAttachments はファイルを添付ファイルとして読み込む。
func readAttachments(paths []string, inline bool) ([]domain.EmailAttachment, error) {
	out := make([]domain.EmailAttachment, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading attachment: %w", err)
		}
		name := filepath.Base(p)
		mimeType := mime.TypeByExtension(filepath.Ext(name))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		a := domain.EmailAttachment{FileName: name, MimeType: mimeType, Inline: inline, Data: data}
		if inline {
			a.ContentID = name
		}
		out = append(out, a)
	}
	return out, nil
}

func messageSendCmd() *cobra.Command {
	var (
		addressID, from, subject, body, bodyFile string
		replyingTo, forwarding                   string
		to, cc, bcc, replyTo, attach, inline     []string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an email message",
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := rfc822.ParseAddress(from)
			if err != nil {
				return err
			}
			in := domain.SendEmailMessageInput{
				SenderEmailAddressID: addressID,
				Header:               domain.EmailMessageHeader{From: sender, Subject: subject},
				Body:                 body,
			}
			for _, f := range []struct {
				dst  *[]domain.EmailMessageAddress
				list []string
			}{
				{&in.Header.To, to},
				{&in.Header.Cc, cc},
				{&in.Header.Bcc, bcc},
				{&in.Header.ReplyTo, replyTo},
			} {
				if *f.dst, err = rfc822.ParseAddresses(f.list); err != nil {
					return err
				}
			}
			if bodyFile != "" {
				b, err := os.ReadFile(bodyFile)
				if err != nil {
					return fmt.Errorf("reading body: %w", err)
				}
				in.Body = string(b)
			}
			if in.Attachments, err = readAttachments(attach, false); err != nil {
				return err
			}
			if in.InlineAttachments, err = readAttachments(inline, true); err != nil {
				return err
			}
			if replyingTo != "" {
				in.ReplyingMessageID = &replyingTo
			}
			if forwarding != "" {
				in.ForwardingMessageID = &forwarding
			}

			return run(cmd, func(ctx context.Context, a *app) error {
				result, err := a.client.SendEmailMessage(ctx, in)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(result)
				}
				fmt.Printf("Sent message %s at %s\n", result.ID, formatTime(result.CreatedAt))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Sender email address ID (required)")
	cmd.Flags().StringVar(&from, "from", "", "From address (required)")
	cmd.Flags().StringSliceVar(&to, "to", nil, "To addresses")
	cmd.Flags().StringSliceVar(&cc, "cc", nil, "Cc addresses")
	cmd.Flags().StringSliceVar(&bcc, "bcc", nil, "Bcc addresses")
	cmd.Flags().StringSliceVar(&replyTo, "reply-to", nil, "Reply-To addresses")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject")
	cmd.Flags().StringVar(&body, "body", "", "Body text")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the body text from a file")
	cmd.Flags().StringSliceVar(&attach, "attach", nil, "Files to attach")
	cmd.Flags().StringSliceVar(&inline, "inline", nil, "Files to attach inline")
	cmd.Flags().StringVar(&replyingTo, "replying-to", "", "ID of the message being replied to")
	cmd.Flags().StringVar(&forwarding, "forwarding", "", "ID of the message being forwarded")
	cmd.MarkFlagRequired("address-id")
	cmd.MarkFlagRequired("from")
	return cmd
}

func messageUpdateCmd() *cobra.Command {
	var folderID string
	var seen bool
	cmd := &cobra.Command{
		Use:   "update ID...",
		Short: "Move messages or change their seen flag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.UpdateEmailMessagesInput{IDs: args}
			if cmd.Flags().Changed("folder-id") {
				in.Values.FolderID = &folderID
			}
			if cmd.Flags().Changed("seen") {
				in.Values.Seen = &seen
			}
			if in.Values.FolderID == nil && in.Values.Seen == nil {
				return fmt.Errorf("--folder-id or --seen is required")
			}

			return run(cmd, func(ctx context.Context, a *app) error {
				result, err := a.client.UpdateEmailMessages(ctx, in)
				if err != nil {
					return err
				}
				return printBatch(result, "update",
					func(s domain.UpdatedEmailMessageSuccess) string { return s.ID },
					func(f domain.EmailMessageOperationFailureResult) string { return f.ID + " (" + f.ErrorType + ")" },
				)
			})
		},
	}
	cmd.Flags().StringVar(&folderID, "folder-id", "", "Move messages to this folder")
	cmd.Flags().BoolVar(&seen, "seen", false, "Mark messages as seen or unseen")
	return cmd
}

func messageDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete email messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				if len(args) == 1 {
					result, err := a.client.DeleteEmailMessage(ctx, args[0])
					if err != nil {
						return err
					}
					if result == nil {
						return fmt.Errorf("email message %s could not be deleted", args[0])
					}
					fmt.Printf("Deleted message %s\n", result.ID)
					return nil
				}
				result, err := a.client.DeleteEmailMessages(ctx, args)
				if err != nil {
					return err
				}
				return printBatch(result, "delete",
					func(s domain.DeleteEmailMessageSuccessResult) string { return s.ID },
					func(f domain.EmailMessageOperationFailureResult) string { return f.ID + " (" + f.ErrorType + ")" },
				)
			})
		},
	}
}
