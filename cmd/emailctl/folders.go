package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sealed-mail/internal/domain"
)

func foldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage email folders",
	}
	cmd.AddCommand(folderListCmd(), folderCreateCmd(), folderRenameCmd(), folderDeleteCmd())
	return cmd
}

func printFolder(f domain.EmailFolder) error {
	if isJSON() {
		return printJSON(f)
	}
	fmt.Printf("ID:      %s\n", f.ID)
	fmt.Printf("Name:    %s\n", f.FolderName)
	fmt.Printf("Custom:  %s\n", deref(f.CustomFolderName))
	fmt.Printf("Unseen:  %d\n", f.UnseenCount)
	return nil
}

func folderListCmd() *cobra.Command {
	var addressID, nextToken string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folders of an email address",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				result, err := a.client.ListEmailFoldersForEmailAddressID(ctx, domain.ListEmailFoldersInput{
					EmailAddressID: addressID,
					ListInput:      listInput(limit, nextToken),
				})
				if err != nil {
					return err
				}
				return printList(result, "ID\tNAME\tCUSTOM NAME\tUNSEEN",
					func(w io.Writer, f domain.EmailFolder) {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", f.ID, f.FolderName, deref(f.CustomFolderName), f.UnseenCount)
					},
					func(p domain.PartialEmailFolder) string { return p.ID },
				)
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Email address ID (required)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&nextToken, "next-token", "", "Pagination token")
	cmd.MarkFlagRequired("address-id")
	return cmd
}

func folderCreateCmd() *cobra.Command {
	var addressID string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a custom folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				f, err := a.client.CreateCustomEmailFolder(ctx, domain.CreateCustomEmailFolderInput{
					EmailAddressID:   addressID,
					CustomFolderName: args[0],
				})
				if err != nil {
					return err
				}
				return printFolder(f)
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Email address ID (required)")
	cmd.MarkFlagRequired("address-id")
	return cmd
}

func folderRenameCmd() *cobra.Command {
	var addressID string
	cmd := &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a custom folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				f, err := a.client.UpdateCustomEmailFolder(ctx, domain.UpdateCustomEmailFolderInput{
					EmailFolderID:    args[0],
					EmailAddressID:   addressID,
					CustomFolderName: &args[1],
				})
				if err != nil {
					return err
				}
				return printFolder(f)
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Email address ID (required)")
	cmd.MarkFlagRequired("address-id")
	return cmd
}

func folderDeleteCmd() *cobra.Command {
	var addressID string
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a custom folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				f, err := a.client.DeleteCustomEmailFolder(ctx, args[0], addressID)
				if err != nil {
					return err
				}
				if f == nil {
					return fmt.Errorf("folder %s not found", args[0])
				}
				fmt.Printf("Deleted folder %s\n", f.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addressID, "address-id", "", "Email address ID (required)")
	cmd.MarkFlagRequired("address-id")
	return cmd
}
