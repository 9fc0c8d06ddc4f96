package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sealed-mail/internal/domain"
)

func draftsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage draft email messages",
	}
	cmd.AddCommand(
		draftSaveCmd(),
		draftGetCmd(),
		draftListCmd(),
		draftDeleteCmd(),
		draftScheduleCmd(),
		draftCancelCmd(),
		draftScheduledCmd(),
	)
	return cmd
}

// readRFC822 はファイルまたは標準入力からRFC 822データを読み込む。
func readRFC822(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func draftSaveCmd() *cobra.Command {
	var addressID, file, id string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a draft, or update it when --id is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readRFC822(file)
			if err != nil {
				return fmt.Errorf("reading draft: %w", err)
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				var draftID string
				if id == "" {
					draftID, err = a.client.CreateDraftEmailMessage(ctx, domain.CreateDraftEmailMessageInput{
						RFC822Data:           data,
						SenderEmailAddressID: addressID,
					})
				} else {
					draftID, err = a.client.UpdateDraftEmailMessage(ctx, domain.UpdateDraftEmailMessageInput{
						ID:                   id,
						RFC822Data:           data,
						SenderEmailAddressID: addressID,
					})
				}
				if err != nil {
					return err
				}
				fmt.Printf("Saved draft %s\n", draftID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Sender email address ID (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "RFC 822 file (defaults to stdin)")
	cmd.Flags().StringVar(&id, "id", "", "Existing draft ID")
	cmd.MarkFlagRequired("address-id")
	return cmd
}

func draftGetCmd() *cobra.Command {
	var (
		addressID string
		parsed    bool
	)
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Print the RFC 822 data of a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				d, err := a.client.GetDraftEmailMessage(ctx, args[0], addressID)
				if err != nil {
					return err
				}
				if d == nil {
					return fmt.Errorf("draft %s not found", args[0])
				}
				if parsed {
					return printParsed(os.Stdout, d.RFC822Data)
				}
				if isJSON() {
					return printJSON(d)
				}
				_, err = os.Stdout.Write(d.RFC822Data)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Email address ID (required)")
	cmd.Flags().BoolVar(&parsed, "parsed", false, "Print headers, body and attachment list instead of raw data")
	cmd.MarkFlagRequired("address-id")
	return cmd
}

func draftListCmd() *cobra.Command {
	var addressID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List draft metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				var (
					drafts []domain.DraftEmailMessageMetadata
					err    error
				)
				if addressID != "" {
					drafts, err = a.client.ListDraftEmailMessageMetadataForEmailAddressID(ctx, addressID)
				} else {
					drafts, err = a.client.ListDraftEmailMessageMetadata(ctx)
				}
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(drafts)
				}
				return printTable("ID\tADDRESS ID\tUPDATED AT", func(w io.Writer) {
					for _, d := range drafts {
						fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.EmailAddressID, formatTime(d.UpdatedAt))
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Only list drafts of this email address")
	return cmd
}

func draftDeleteCmd() *cobra.Command {
	var addressID string
	cmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete drafts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				result, err := a.client.DeleteDraftEmailMessages(ctx, domain.DeleteDraftEmailMessagesInput{
					IDs:            args,
					EmailAddressID: addressID,
				})
				if err != nil {
					return err
				}
				return printBatch(result, "delete",
					func(id string) string { return id },
					func(f domain.EmailMessageOperationFailureResult) string { return f.ID + " (" + f.ErrorType + ")" },
				)
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Email address ID (required)")
	cmd.MarkFlagRequired("address-id")
	return cmd
}

func printScheduled(s domain.ScheduledDraftMessage) error {
	if isJSON() {
		return printJSON(s)
	}
	fmt.Printf("Draft %s: %s at %s\n", s.ID, s.State, formatTime(s.SendAt))
	return nil
}

func draftScheduleCmd() *cobra.Command {
	var addressID, at string
	cmd := &cobra.Command{
		Use:   "schedule ID",
		Short: "Schedule a draft to be sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sendAt, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				s, err := a.client.ScheduleSendDraftMessage(ctx, domain.ScheduleSendDraftMessageInput{
					ID:             args[0],
					EmailAddressID: addressID,
					SendAt:         sendAt,
				})
				if err != nil {
					return err
				}
				return printScheduled(s)
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Email address ID (required)")
	cmd.Flags().StringVar(&at, "at", "", "Send time in RFC3339 (required)")
	cmd.MarkFlagRequired("address-id")
	cmd.MarkFlagRequired("at")
	return cmd
}

func draftCancelCmd() *cobra.Command {
	var addressID string
	cmd := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a scheduled draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				id, err := a.client.CancelScheduledDraftMessage(ctx, domain.CancelScheduledDraftMessageInput{
					ID:             args[0],
					EmailAddressID: addressID,
				})
				if err != nil {
					return err
				}
				fmt.Printf("Cancelled scheduled draft %s\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Email address ID (required)")
	cmd.MarkFlagRequired("address-id")
	return cmd
}

func draftScheduledCmd() *cobra.Command {
	var addressID, nextToken string
	var states []string
	var limit int
	cmd := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.ListScheduledDraftMessagesInput{
				EmailAddressID: addressID,
				ListInput:      listInput(limit, nextToken),
			}
			for _, s := range states {
				in.States = append(in.States, domain.ScheduledDraftMessageState(strings.ToUpper(s)))
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				result, err := a.client.ListScheduledDraftMessagesForEmailAddressID(ctx, in)
				if err != nil {
					return err
				}
				return printList(result, "ID\tSTATE\tSEND AT",
					func(w io.Writer, s domain.ScheduledDraftMessage) {
						fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.State, formatTime(s.SendAt))
					},
					func(s domain.ScheduledDraftMessage) string { return s.ID },
				)
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Email address ID (required)")
	cmd.Flags().StringSliceVar(&states, "state", nil, "Filter by state: SCHEDULED, FAILED, SENT, CANCELLED")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&nextToken, "next-token", "", "Pagination token")
	cmd.MarkFlagRequired("address-id")
	return cmd
}
