package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sealed-mail/internal/domain"
)

func blocklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocklist",
		Short: "Manage blocked sender addresses",
	}
	cmd.AddCommand(blocklistBlockCmd(), blocklistUnblockCmd(), blocklistListCmd())
	return cmd
}

func printBlockResult(r domain.BatchOperationResult[string, string], verb string) error {
	self := func(s string) string { return s }
	return printBatch(r, verb, self, self)
}

func blocklistBlockCmd() *cobra.Command {
	var action, addressID string
	cmd := &cobra.Command{
		Use:   "block ADDRESS...",
		Short: "Block sender addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.BlockEmailAddressesInput{
				Addresses: args,
				Action:    domain.BlockedEmailAddressAction(strings.ToUpper(action)),
			}
			if addressID != "" {
				in.EmailAddressID = &addressID
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				result, err := a.client.BlockEmailAddresses(ctx, in)
				if err != nil {
					return err
				}
				return printBlockResult(result, "block")
			})
		},
	}
	cmd.Flags().StringVar(&action, "action", string(domain.BlockedEmailAddressActionDrop), "Action: DROP, SPAM")
	cmd.Flags().StringVar(&addressID, "address-id", "", "Only block for this email address")
	return cmd
}

func blocklistUnblockCmd() *cobra.Command {
	var hashed bool
	cmd := &cobra.Command{
		Use:   "unblock ADDRESS...",
		Short: "Unblock sender addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				unblock := a.client.UnblockEmailAddresses
				if hashed {
					unblock = a.client.UnblockEmailAddressesByHashedValue
				}
				result, err := unblock(ctx, args)
				if err != nil {
					return err
				}
				return printBlockResult(result, "unblock")
			})
		},
	}
	cmd.Flags().BoolVar(&hashed, "hashed", false, "Arguments are hashed blocked values")
	return cmd
}

type blockedAddressJSON struct {
	Address            string  `json:"address,omitempty"`
	HashedBlockedValue string  `json:"hashedBlockedValue"`
	Action             string  `json:"action"`
	EmailAddressID     *string `json:"emailAddressId,omitempty"`
	Error              string  `json:"error,omitempty"`
}

func blocklistListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List blocked addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				entries, err := a.client.GetEmailAddressBlocklist(ctx)
				if err != nil {
					return err
				}
				if isJSON() {
					out := make([]blockedAddressJSON, 0, len(entries))
					for _, e := range entries {
						j := blockedAddressJSON{
							Address:            e.Address,
							HashedBlockedValue: e.HashedBlockedValue,
							Action:             string(e.Action),
							EmailAddressID:     e.EmailAddressID,
						}
						if e.Status.Kind == domain.BlockedAddressFailed {
							j.Error = e.Status.Err.Error()
						}
						out = append(out, j)
					}
					return printJSON(out)
				}
				return printTable("ADDRESS\tACTION\tSCOPE\tHASH", func(w io.Writer) {
					for _, e := range entries {
						addr := e.Address
						if e.Status.Kind == domain.BlockedAddressFailed {
							addr = "<unsealing failed: " + e.Status.Err.Error() + ">"
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", addr, e.Action, deref(e.EmailAddressID), e.HashedBlockedValue)
					}
				})
			})
		},
	}
}
