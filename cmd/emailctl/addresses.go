package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sealed-mail/internal/domain"
)

func addressesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addresses",
		Short: "Manage email addresses",
	}
	cmd.AddCommand(
		addressDomainsCmd(),
		addressCheckCmd(),
		addressProvisionCmd(),
		addressDeprovisionCmd(),
		addressGetCmd(),
		addressListCmd(),
		addressSetAliasCmd(),
		addressLookupCmd(),
		configurationCmd(),
	)
	return cmd
}

func printAddress(a domain.EmailAddress) error {
	if isJSON() {
		return printJSON(a)
	}
	fmt.Printf("ID:       %s\n", a.ID)
	fmt.Printf("Address:  %s\n", a.EmailAddress)
	fmt.Printf("Alias:    %s\n", deref(a.Alias))
	fmt.Printf("Messages: %d\n", a.NumberOfEmailMessages)
	fmt.Printf("Created:  %s\n", formatTime(a.CreatedAt))
	for _, f := range a.Folders {
		fmt.Printf("Folder:   %s (%s)\n", f.FolderName, f.ID)
	}
	return nil
}

func addressDomainsCmd() *cobra.Command {
	var configured bool
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List supported email domains",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				get := a.client.GetSupportedEmailDomains
				if configured {
					get = a.client.GetConfiguredEmailDomains
				}
				domains, err := get(ctx)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(domains)
				}
				fmt.Println(strings.Join(domains, "\n"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&configured, "configured", false, "List configured domains instead of supported domains")
	return cmd
}

func addressCheckCmd() *cobra.Command {
	var localParts, domains []string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Search for available email addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				addresses, err := a.client.CheckEmailAddressAvailability(ctx, domain.CheckEmailAddressAvailabilityInput{
					LocalParts: localParts,
					Domains:    domains,
				})
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(addresses)
				}
				fmt.Println(strings.Join(addresses, "\n"))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&localParts, "local-part", nil, "Local parts to check (required)")
	cmd.Flags().StringSliceVar(&domains, "domain", nil, "Domains to check (defaults to supported domains)")
	cmd.MarkFlagRequired("local-part")
	return cmd
}

func addressProvisionCmd() *cobra.Command {
	var token, alias, keyID string
	cmd := &cobra.Command{
		Use:   "provision ADDRESS",
		Short: "Provision an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				in := domain.ProvisionEmailAddressInput{
					EmailAddress:        args[0],
					OwnershipProofToken: token,
					KeyID:               keyID,
				}
				if cmd.Flags().Changed("alias") {
					in.Alias = &alias
				}
				addr, err := a.client.ProvisionEmailAddress(ctx, in)
				if err != nil {
					return err
				}
				return printAddress(addr)
			})
		},
	}
	cmd.Flags().StringVar(&token, "ownership-proof", "", "Ownership proof token (required)")
	cmd.Flags().StringVar(&alias, "alias", "", "Display alias")
	cmd.Flags().StringVar(&keyID, "key-id", "", "Use an existing key pair")
	cmd.MarkFlagRequired("ownership-proof")
	return cmd
}

func addressDeprovisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deprovision ID",
		Short: "Deprovision an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				addr, err := a.client.DeprovisionEmailAddress(ctx, args[0])
				if err != nil {
					return err
				}
				return printAddress(addr)
			})
		},
	}
}

func addressGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Get an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				addr, err := a.client.GetEmailAddress(ctx, args[0])
				if err != nil {
					return err
				}
				if addr == nil {
					return fmt.Errorf("email address %s not found", args[0])
				}
				return printAddress(*addr)
			})
		},
	}
}

func addressListCmd() *cobra.Command {
	var sudoID, nextToken string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List email addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				in := listInput(limit, nextToken)
				var (
					result domain.ListAPIResult[domain.EmailAddress, domain.PartialEmailAddress]
					err    error
				)
				if sudoID != "" {
					result, err = a.client.ListEmailAddressesForSudoID(ctx, sudoID, in)
				} else {
					result, err = a.client.ListEmailAddresses(ctx, in)
				}
				if err != nil {
					return err
				}
				return printList(result, "ID\tADDRESS\tALIAS\tMESSAGES",
					func(w io.Writer, addr domain.EmailAddress) {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", addr.ID, addr.EmailAddress, deref(addr.Alias), addr.NumberOfEmailMessages)
					},
					func(p domain.PartialEmailAddress) string { return p.ID },
				)
			})
		},
	}
	cmd.Flags().StringVar(&sudoID, "sudo-id", "", "Only list addresses of this sudo")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&nextToken, "next-token", "", "Pagination token")
	return cmd
}

func addressSetAliasCmd() *cobra.Command {
	var alias string
	cmd := &cobra.Command{
		Use:   "set-alias ID",
		Short: "Set or clear the alias of an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				in := domain.UpdateEmailAddressMetadataInput{ID: args[0]}
				if alias != "" {
					in.Alias = &alias
				}
				id, err := a.client.UpdateEmailAddressMetadata(ctx, in)
				if err != nil {
					return err
				}
				fmt.Printf("Updated email address %s\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "New alias (empty clears the alias)")
	return cmd
}

func addressLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup ADDRESS...",
		Short: "Look up public key information of email addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				infos, err := a.client.LookupEmailAddressesPublicInfo(ctx, args)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(infos)
				}
				return printTable("ADDRESS\tKEY ID", func(w io.Writer) {
					for _, info := range infos {
						fmt.Fprintf(w, "%s\t%s\n", info.EmailAddress, info.KeyID)
					}
				})
			})
		},
	}
}

func configurationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show email service limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				c, err := a.client.GetConfigurationData(ctx)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(c)
				}
				fmt.Printf("Delete messages limit:        %d\n", c.DeleteEmailMessagesLimit)
				fmt.Printf("Update messages limit:        %d\n", c.UpdateEmailMessagesLimit)
				fmt.Printf("Max inbound message size:     %d\n", c.EmailMessageMaxInboundMessageSize)
				fmt.Printf("Max outbound message size:    %d\n", c.EmailMessageMaxOutboundMessageSize)
				fmt.Printf("Recipients limit:             %d\n", c.EmailMessageRecipientsLimit)
				fmt.Printf("Encrypted recipients limit:   %d\n", c.EncryptedEmailMessageRecipientsLimit)
				return nil
			})
		},
	}
}
