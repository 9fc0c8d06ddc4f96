package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage local key material",
	}
	cmd.AddCommand(keyCurrentCmd(), keyRotateCmd(), keyExportCmd(), keyImportCmd(), keyResetCmd(), keyRotationsCmd())
	return cmd
}

func keyCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current symmetric key and key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd, func(ctx context.Context, a *app) error {
				symmetricID, err := a.keyManager.GetCurrentSymmetricKeyID(ctx)
				if err != nil {
					return err
				}
				kp, err := a.keyManager.GetCurrentKeyPair(ctx)
				if err != nil {
					return err
				}
				keyPairID := ""
				if kp != nil {
					keyPairID = kp.KeyID
				}
				if isJSON() {
					return printJSON(map[string]string{
						"keyRingId":      a.keyManager.KeyRingID(),
						"symmetricKeyId": symmetricID,
						"keyPairId":      keyPairID,
					})
				}
				fmt.Printf("Key ring:      %s\n", a.keyManager.KeyRingID())
				fmt.Printf("Symmetric key: %s\n", deref(nonEmpty(symmetricID)))
				fmt.Printf("Key pair:      %s\n", deref(nonEmpty(keyPairID)))
				return nil
			})
		},
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func keyRotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Generate a new current symmetric key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd, func(ctx context.Context, a *app) error {
				keyID, err := a.client.RotateSymmetricKey(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Rotated symmetric key (new key ID: %s)\n", keyID)
				return nil
			})
		},
	}
}

func keyExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all key material to an archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd, func(ctx context.Context, a *app) error {
				data, err := a.client.ExportKeys(ctx)
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = os.Stdout.Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0o600); err != nil {
					return fmt.Errorf("writing archive: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Exported keys to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Archive file (defaults to stdout)")
	cmd.Flags().StringVar(&archivePassphrase, "passphrase", "", "Encrypt the archive with this passphrase")
	return cmd
}

func keyImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import key material from an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading archive: %w", err)
			}
			return runLocal(cmd, func(ctx context.Context, a *app) error {
				if err := a.client.ImportKeys(ctx, data); err != nil {
					return err
				}
				fmt.Println("Imported keys.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&archivePassphrase, "passphrase", "", "Passphrase of an encrypted archive")
	return cmd
}

func keyResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all local key material",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes every key irreversibly; pass --yes to confirm")
			}
			return runLocal(cmd, func(ctx context.Context, a *app) error {
				if err := a.client.Reset(ctx); err != nil {
					return err
				}
				fmt.Println("Deleted all keys.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func keyRotationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotations",
		Short: "Show the symmetric key rotation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd, func(ctx context.Context, a *app) error {
				rotations, err := a.keyManager.ListRotations(ctx)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(rotations)
				}
				return printTable("KEY ID\tPREVIOUS KEY ID\tROTATED AT", func(w io.Writer) {
					for _, r := range rotations {
						fmt.Fprintf(w, "%s\t%s\t%s\n", r.KeyID, deref(r.PreviousKeyID), formatTime(r.RotatedAt))
					}
				})
			})
		},
	}
}
